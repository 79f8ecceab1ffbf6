package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"price-scout/models"
	"price-scout/scraper/marketplace"
	"price-scout/services"
	"price-scout/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubFetcher struct {
	body string
	err  error
}

func (f stubFetcher) Fetch(context.Context, models.SearchRequest) ([]*models.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Page{{
		Number:      1,
		URL:         "https://shop.example/search?q=keyboard",
		ContentType: "application/json",
		Body:        []byte(f.body),
	}}, nil
}

func newTestRouter(f marketplace.Fetcher) *gin.Engine {
	logger := utils.NopLogger()
	svc := services.NewReportService(services.Options{
		Query:         "keyboard",
		Pages:         1,
		PriceBrackets: []int64{200},
	}, f, nil, logger)
	return NewRouter(svc, logger)
}

func do(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

const twoProducts = `[{"name":"B","price":300,"url":"/b"},{"name":"A","price":150,"url":"/a","isAd":true}]`

func TestGetReport(t *testing.T) {
	w := do(t, newTestRouter(stubFetcher{body: twoProducts}), "/api/v1/report")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Report  models.Report  `json:"report"`
		Summary models.Summary `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Report.Products) != 2 || resp.Report.Products[0].Name != "A" {
		t.Errorf("unexpected products: %+v", resp.Report.Products)
	}
	if resp.Report.Cheapest == nil || resp.Report.Cheapest.URL != "https://shop.example/a" {
		t.Errorf("unexpected cheapest: %+v", resp.Report.Cheapest)
	}
	if resp.Summary.Average == nil || *resp.Summary.Average != 225 {
		t.Errorf("average: got %v", resp.Summary.Average)
	}
	if resp.Summary.Sponsored != 1 {
		t.Errorf("sponsored: got %d", resp.Summary.Sponsored)
	}
	if len(resp.Summary.Brackets) != 1 || resp.Summary.Brackets[0].Count != 1 {
		t.Errorf("brackets: got %+v", resp.Summary.Brackets)
	}
}

func TestGetReportEmpty(t *testing.T) {
	w := do(t, newTestRouter(stubFetcher{body: `[]`}), "/api/v1/report")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"products":[]`) {
		t.Errorf("products should serialise as an empty array: %s", body)
	}
	if strings.Contains(body, `"cheapest"`) {
		t.Errorf("cheapest should be absent: %s", body)
	}
	if !strings.Contains(body, `"median":null`) || !strings.Contains(body, `"average":null`) {
		t.Errorf("median and average should be null: %s", body)
	}
}

func TestGetReportFetchFailure(t *testing.T) {
	f := stubFetcher{err: &marketplace.FetchError{Page: 1, StatusCode: 503, Err: errors.New("unavailable")}}
	w := do(t, newTestRouter(f), "/api/v1/report")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", w.Code)
	}
	if strings.Contains(w.Body.String(), `"report"`) {
		t.Errorf("no report may be returned on failure: %s", w.Body.String())
	}
}

func TestGetReportTimeout(t *testing.T) {
	f := stubFetcher{err: &marketplace.FetchError{Page: 1, Err: context.DeadlineExceeded}}
	w := do(t, newTestRouter(f), "/api/v1/report")
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status: got %d, want 504", w.Code)
	}
}

func TestGetCheapest(t *testing.T) {
	w := do(t, newTestRouter(stubFetcher{body: twoProducts}), "/api/v1/report/cheapest")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp struct {
		Cheapest models.Listing `json:"cheapest"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Cheapest.Name != "A" || resp.Cheapest.Price != 150 || !resp.Cheapest.Sponsored {
		t.Errorf("unexpected cheapest: %+v", resp.Cheapest)
	}
}

func TestGetCheapestNoResults(t *testing.T) {
	w := do(t, newTestRouter(stubFetcher{body: `{"products":[]}`}), "/api/v1/report/cheapest")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(stubFetcher{body: `[]`})

	w := do(t, r, "/health")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}

	do(t, r, "/api/v1/report")
	w = do(t, r, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Error("metrics should expose http_requests_total")
	}
}
