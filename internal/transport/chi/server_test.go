package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/meridian-cloud/specdex"
	"github.com/meridian-cloud/specdex/internal/broadcast"
)

const catalogBody = `[
	{
		"id": "a",
		"title": "Skimmer",
		"specifications": {
			"performance": {
				"flow_rate": {"value": "10", "unit": "GPM", "range": "5-15"}
			}
		}
	},
	{
		"id": "b",
		"title": "Press",
		"specifications": {
			"performance": {
				"flow_rate": {"value": "100", "unit": "GPM"}
			}
		}
	}
]`

type stubBroadcaster struct {
	events []broadcast.Event
	err    error
}

func (s *stubBroadcaster) Publish(_ context.Context, ev broadcast.Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func newTestServer(t *testing.T, broadcaster Broadcaster) *httptest.Server {
	t.Helper()
	srv := NewServer(specdex.New(), broadcaster, zap.NewNop())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func putCatalog(t *testing.T, ts *httptest.Server) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/catalog", strings.NewReader(catalogBody))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /catalog status = %d", resp.StatusCode)
	}
	var body CatalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Indexed != 2 {
		t.Fatalf("indexed = %d, want 2", body.Indexed)
	}
}

func postSearch(t *testing.T, ts *httptest.Server, req SearchRequest) (*http.Response, SearchResponse) {
	t.Helper()
	payload, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+"/search", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body SearchResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
	}
	return resp, body
}

func TestServer_SearchBeforeCatalogLoaded(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/search", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "catalog_not_loaded" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestServer_CatalogThenSearch(t *testing.T) {
	ts := newTestServer(t, nil)
	putCatalog(t, ts)

	resp, body := postSearch(t, ts, SearchRequest{
		Ranges: map[string]RangeDTO{"performance.flow_rate": {Min: 8, Max: 12}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body.Total != 1 || len(body.Results) != 1 {
		t.Fatalf("total = %d, results = %d, want 1/1", body.Total, len(body.Results))
	}
	got := body.Results[0]
	if got.ID != "a" || got.Title != "Skimmer" {
		t.Errorf("result = %+v, want product a", got)
	}
	if len(got.MatchedSpecs) != 1 || got.MatchedSpecs[0] != "performance.flow_rate" {
		t.Errorf("matched specs = %v", got.MatchedSpecs)
	}
}

func TestServer_SearchLimit(t *testing.T) {
	ts := newTestServer(t, nil)
	putCatalog(t, ts)

	// No filters: both products match with baseline scores. Limit trims
	// the page, Total reports the full match count.
	resp, body := postSearch(t, ts, SearchRequest{Limit: 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body.Total != 2 {
		t.Errorf("total = %d, want 2", body.Total)
	}
	if len(body.Results) != 1 {
		t.Errorf("results = %d, want 1", len(body.Results))
	}
}

func TestServer_SearchRequestsAreSelfContained(t *testing.T) {
	ts := newTestServer(t, nil)
	putCatalog(t, ts)

	if resp, body := postSearch(t, ts, SearchRequest{Query: "skimmer"}); resp.StatusCode != http.StatusOK || body.Total != 1 {
		t.Fatalf("first search: status %d, total %d", resp.StatusCode, body.Total)
	}

	// The previous query must not leak into this filterless request.
	_, body := postSearch(t, ts, SearchRequest{})
	if body.Total != 2 {
		t.Errorf("total = %d, want 2 after filterless search", body.Total)
	}
}

func TestServer_BadSearchBody(t *testing.T) {
	ts := newTestServer(t, nil)
	putCatalog(t, ts)

	resp, err := http.Post(ts.URL+"/search", "application/json", strings.NewReader(`{"query"`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_Categories(t *testing.T) {
	ts := newTestServer(t, nil)
	putCatalog(t, ts)

	resp, err := http.Get(ts.URL + "/catalog/categories")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body CategoriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Categories) != 1 || body.Categories[0] != "performance" {
		t.Errorf("categories = %v", body.Categories)
	}
}

func TestServer_SpecRange(t *testing.T) {
	ts := newTestServer(t, nil)
	putCatalog(t, ts)

	resp, err := http.Get(ts.URL + "/catalog/specs/performance.flow_rate/range")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body SpecRangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Min != 10 || body.Max != 100 || body.Unit != "GPM" {
		t.Errorf("range = %+v, want [10, 100] GPM", body)
	}

	missing, err := http.Get(ts.URL + "/catalog/specs/electrical.voltage/range")
	if err != nil {
		t.Fatal(err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown key status = %d, want 404", missing.StatusCode)
	}
}

func TestServer_PublishesFilters(t *testing.T) {
	stub := &stubBroadcaster{}
	ts := newTestServer(t, stub)
	putCatalog(t, ts)

	postSearch(t, ts, SearchRequest{
		Query:      "skimmer",
		Ranges:     map[string]RangeDTO{"performance.flow_rate": {Min: 8, Max: 12}},
		Categories: []string{"performance"},
	})

	if len(stub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(stub.events))
	}
	ev := stub.events[0]
	if ev.Query != "skimmer" {
		t.Errorf("query = %q", ev.Query)
	}
	if rng, ok := ev.Ranges["performance.flow_rate"]; !ok || rng.Min != 8 || rng.Max != 12 {
		t.Errorf("ranges = %v", ev.Ranges)
	}
	if len(ev.Categories) != 1 || ev.Categories[0] != "performance" {
		t.Errorf("categories = %v", ev.Categories)
	}
}

func TestServer_BroadcastFailureDoesNotFailSearch(t *testing.T) {
	stub := &stubBroadcaster{err: errors.New("redis down")}
	ts := newTestServer(t, stub)
	putCatalog(t, ts)

	resp, body := postSearch(t, ts, SearchRequest{Query: "skimmer"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite broadcast failure", resp.StatusCode)
	}
	if body.Total != 1 {
		t.Errorf("total = %d", body.Total)
	}
}
