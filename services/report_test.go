package services

import (
	"context"
	"errors"
	"testing"

	"price-scout/models"
	"price-scout/parser"
	"price-scout/scraper/marketplace"
)

type stubFetcher struct {
	pages []*models.Page
	err   error
	req   models.SearchRequest
}

func (f *stubFetcher) Fetch(_ context.Context, req models.SearchRequest) ([]*models.Page, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type recordingWriter struct {
	cards []models.RawCard
	calls int
}

func (w *recordingWriter) WriteRaw(cards []models.RawCard) error {
	w.calls++
	w.cards = cards
	return nil
}

func page(n int, body string) *models.Page {
	return &models.Page{
		Number:      n,
		URL:         "https://shop.example/search?q=keyboard",
		ContentType: "application/json",
		Body:        []byte(body),
	}
}

func newService(f marketplace.Fetcher, raw *recordingWriter) *ReportService {
	opts := Options{Query: "keyboard", Pages: 2, PageSize: 60, PriceBrackets: []int64{200, 500}, Now: fixedClock}
	if raw == nil {
		return NewReportService(opts, f, nil, newTestLogger())
	}
	return NewReportService(opts, f, raw, newTestLogger())
}

func checkReportInvariants(t *testing.T, r *models.Report) {
	t.Helper()
	seen := make(map[string]bool)
	for i, l := range r.Products {
		if l.Name == "" || l.URL == "" || l.Price <= 0 {
			t.Errorf("product %d violates required fields: %+v", i, l)
		}
		if seen[l.URL] {
			t.Errorf("duplicate url in products: %s", l.URL)
		}
		seen[l.URL] = true
		if i > 0 && r.Products[i-1].Price > l.Price {
			t.Errorf("products not sorted at %d", i)
		}
	}
	if len(r.Products) == 0 && r.Cheapest != nil {
		t.Error("cheapest must be absent when products is empty")
	}
	if len(r.Products) > 0 && r.Cheapest != r.Products[0] {
		t.Error("cheapest must be products[0]")
	}
}

func TestBuildToleratesMalformedRecord(t *testing.T) {
	f := &stubFetcher{pages: []*models.Page{page(1, `{"products":[
		{"name":"A","price":400,"url":"/p/a"},
		{"name":"B","url":"/p/b"},
		{"name":"C","price":"Rp 100","url":"/p/c"},
		{"name":"D","price":300,"url":"/p/d"},
		{"name":"E","price":200,"url":"/p/e"}
	]}`)}}
	raw := &recordingWriter{}

	r, err := newService(f, raw).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(r.Products) != 4 {
		t.Fatalf("products: got %d, want 4", len(r.Products))
	}
	checkReportInvariants(t, r)
	if r.Cheapest.Name != "C" || r.Cheapest.Price != 100 {
		t.Errorf("cheapest: got %q at %d", r.Cheapest.Name, r.Cheapest.Price)
	}
	if raw.calls != 1 || len(raw.cards) != 5 {
		t.Errorf("raw dump: %d calls, %d cards", raw.calls, len(raw.cards))
	}
	if f.req.Query != "keyboard" || f.req.Pages != 2 || f.req.PageSize != 60 {
		t.Errorf("unexpected search request: %+v", f.req)
	}
}

func TestBuildDeduplicatesAcrossPages(t *testing.T) {
	f := &stubFetcher{pages: []*models.Page{
		page(1, `[{"name":"A","price":300,"url":"/p/a"},{"name":"B","price":100,"url":"/p/b"}]`),
		page(2, `[{"name":"B repeated","price":100,"url":"/p/b?utm_source=x"},{"name":"C","price":100,"url":"/p/c"}]`),
	}}

	r, err := newService(f, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	checkReportInvariants(t, r)

	want := []string{"B", "C", "A"}
	if len(r.Products) != len(want) {
		t.Fatalf("products: got %d, want %d", len(r.Products), len(want))
	}
	for i, name := range want {
		if r.Products[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, r.Products[i].Name, name)
		}
	}
}

func TestBuildEmptyUpstream(t *testing.T) {
	f := &stubFetcher{pages: []*models.Page{page(1, `{"products":[]}`)}}

	r, err := newService(f, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r == nil {
		t.Fatal("expected a report")
	}
	if r.Products == nil || len(r.Products) != 0 {
		t.Errorf("products: got %v, want empty", r.Products)
	}
	if r.Cheapest != nil {
		t.Error("cheapest must be absent")
	}
	if !r.FetchedAt.Equal(fixedTime) {
		t.Errorf("fetchedAt: got %v", r.FetchedAt)
	}
}

func TestBuildFetchFailureYieldsNoReport(t *testing.T) {
	f := &stubFetcher{err: &marketplace.FetchError{Page: 1, StatusCode: 503, Err: errors.New("service unavailable")}}

	r, err := newService(f, nil).Build(context.Background())
	if r != nil {
		t.Errorf("expected no report, got %+v", r)
	}
	if !errors.Is(err, marketplace.ErrFetchFailure) {
		t.Errorf("expected ErrFetchFailure, got %v", err)
	}
}

func TestBuildUnexpectedShapeIsFetchFailure(t *testing.T) {
	f := &stubFetcher{pages: []*models.Page{
		page(1, `[]`),
		page(2, `{"error":"captcha required"}`),
	}}
	raw := &recordingWriter{}

	r, err := newService(f, raw).Build(context.Background())
	if r != nil {
		t.Errorf("expected no report, got %+v", r)
	}
	if !errors.Is(err, marketplace.ErrFetchFailure) || !errors.Is(err, parser.ErrUnexpectedShape) {
		t.Fatalf("expected fetch failure wrapping unexpected shape, got %v", err)
	}
	var fe *marketplace.FetchError
	if !errors.As(err, &fe) || fe.Page != 2 {
		t.Errorf("expected FetchError for page 2, got %v", err)
	}
	if raw.calls != 0 {
		t.Error("raw dump should not run for a failed report")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	body := `[{"name":"X","price":100,"url":"/x"},{"name":"Y","price":100,"url":"/y"},{"name":"Z","price":50,"url":"/z"}]`
	svc := newService(&stubFetcher{pages: []*models.Page{page(1, body)}}, nil)

	first, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := svc.Build(context.Background())
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		for j := range first.Products {
			if again.Products[j].URL != first.Products[j].URL {
				t.Fatalf("run %d position %d: got %s, want %s", i, j, again.Products[j].URL, first.Products[j].URL)
			}
		}
		if again.ID == first.ID {
			t.Error("each build should get its own report id")
		}
	}
}

func TestReportServiceSummarize(t *testing.T) {
	body := `[{"name":"A","price":150,"url":"/a"},{"name":"B","price":200,"url":"/b"},{"name":"C","price":250,"url":"/c"},{"name":"D","price":500,"url":"/d"}]`
	svc := newService(&stubFetcher{pages: []*models.Page{page(1, body)}}, nil)

	r, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := svc.Summarize(r)
	if len(s.Brackets) != 2 || s.Brackets[0].Count != 2 || s.Brackets[1].Count != 4 {
		t.Errorf("brackets: got %+v", s.Brackets)
	}
}
