package crawler

import (
	"context"
	"fmt"
	"testing"

	"github.com/mibarrio-uy/listing-harvester/internal/domain"
	"github.com/mibarrio-uy/listing-harvester/pkg/categories"
)

type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) HTML(_ context.Context, url string) (string, error) {
	f.fetched = append(f.fetched, url)
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return html, nil
}

type fakeImporter struct {
	imported []*domain.ScrapedListing
}

func (f *fakeImporter) ImportOne(_ context.Context, l *domain.ScrapedListing) domain.ImportOutcome {
	f.imported = append(f.imported, l)
	return domain.OutcomeInserted
}

type fakeSeen struct {
	seen   map[string]bool
	marked []string
}

func (f *fakeSeen) SeenListing(id string) (bool, error) { return f.seen[id], nil }
func (f *fakeSeen) MarkListing(id string) error {
	f.marked = append(f.marked, id)
	return nil
}

func detailHTML(name string) string {
	return fmt.Sprintf(`<html><body><h1>%s</h1><h2>Rivera 100 - Pocitos - Montevideo</h2></body></html>`, name)
}

func electricista() categories.Category {
	return categories.Category{Code: "electricista", PRD: "PRD1000390", Label: "Electricistas"}
}

func testOptions() Options {
	return Options{
		BaseURL:  "https://1122.com.uy",
		ZoneCode: "Z01000",
		MaxPages: 3,
	}
}

func TestRunScrapesAndImportsCategory(t *testing.T) {
	base := "https://1122.com.uy/rubro-zona/montevideo/electricistas/PRD1000390/Z01000"
	fetcher := &fakeFetcher{pages: map[string]string{
		base: `<html><body>
<a href="/local/silva-1"><h2>Silva</h2></a>
<a href="/local/perez-2"><h2>Pérez</h2></a>
</body></html>`,
		base + "?pagina=2":                   `<html><body>no more cards</body></html>`,
		"https://1122.com.uy/local/silva-1": detailHTML("Electricidad Silva"),
		"https://1122.com.uy/local/perez-2": detailHTML("Sanitaria Pérez"),
	}}
	importer := &fakeImporter{}
	seen := &fakeSeen{seen: map[string]bool{}}

	svc := NewService(fetcher, importer, seen, nil, testOptions())
	runs, err := svc.Run(context.Background(), []categories.Category{electricista()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 category run, got %d", len(runs))
	}

	run := runs[0]
	if len(run.Listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(run.Listings))
	}
	if run.Listings[0].BusinessName != "Electricidad Silva" {
		t.Errorf("first listing = %q", run.Listings[0].BusinessName)
	}
	if len(importer.imported) != 2 {
		t.Errorf("expected 2 imports, got %d", len(importer.imported))
	}
	if run.Result.Inserted != 2 {
		t.Errorf("Result.Inserted = %d", run.Result.Inserted)
	}
	if len(seen.marked) != 2 || seen.marked[0] != "silva-1" {
		t.Errorf("seen cache marks = %v", seen.marked)
	}
	// The empty page 2 stops pagination before page 3.
	for _, url := range fetcher.fetched {
		if url == base+"?pagina=3" {
			t.Errorf("pagination did not stop on empty page")
		}
	}
}

func TestRunSkipsListingsInSeenCache(t *testing.T) {
	base := "https://1122.com.uy/rubro-zona/montevideo/electricistas/PRD1000390/Z01000"
	fetcher := &fakeFetcher{pages: map[string]string{
		base: `<html><body>
<a href="/local/silva-1"><h2>Silva</h2></a>
<a href="/local/perez-2"><h2>Pérez</h2></a>
</body></html>`,
		base + "?pagina=2":                   `<html><body></body></html>`,
		"https://1122.com.uy/local/perez-2": detailHTML("Sanitaria Pérez"),
	}}
	importer := &fakeImporter{}
	seen := &fakeSeen{seen: map[string]bool{"silva-1": true}}

	svc := NewService(fetcher, importer, seen, nil, testOptions())
	runs, err := svc.Run(context.Background(), []categories.Category{electricista()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runs[0].Listings) != 1 || runs[0].Listings[0].BusinessName != "Sanitaria Pérez" {
		t.Fatalf("expected only the unseen listing, got %+v", runs[0].Listings)
	}
	for _, url := range fetcher.fetched {
		if url == "https://1122.com.uy/local/silva-1" {
			t.Errorf("seen listing detail page should not be fetched")
		}
	}
}

func TestRunHonorsPerCategoryLimit(t *testing.T) {
	base := "https://1122.com.uy/rubro-zona/montevideo/electricistas/PRD1000390/Z01000"
	fetcher := &fakeFetcher{pages: map[string]string{
		base: `<html><body>
<a href="/local/silva-1"><h2>Silva</h2></a>
<a href="/local/perez-2"><h2>Pérez</h2></a>
<a href="/local/norte-3"><h2>Norte</h2></a>
</body></html>`,
		"https://1122.com.uy/local/silva-1": detailHTML("Electricidad Silva"),
	}}
	importer := &fakeImporter{}

	opts := testOptions()
	opts.MaxPages = 1
	opts.LimitPerCategory = 1
	svc := NewService(fetcher, importer, &fakeSeen{seen: map[string]bool{}}, nil, opts)

	runs, err := svc.Run(context.Background(), []categories.Category{electricista()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runs[0].Listings) != 1 {
		t.Fatalf("expected limit of 1 listing, got %d", len(runs[0].Listings))
	}
}

func TestCategoryLimitOverridesGlobal(t *testing.T) {
	opts := testOptions()
	opts.LimitPerCategory = 10
	svc := NewService(&fakeFetcher{}, nil, nil, nil, opts)

	cat := electricista()
	if got := svc.categoryLimit(cat); got != 10 {
		t.Errorf("categoryLimit without override = %d", got)
	}
	cat.Limit = 3
	if got := svc.categoryLimit(cat); got != 3 {
		t.Errorf("categoryLimit with override = %d", got)
	}
}

func TestRunContinuesPastFailingCategory(t *testing.T) {
	good := "https://1122.com.uy/rubro-zona/montevideo/electricistas/PRD1000390/Z01000"
	fetcher := &fakeFetcher{pages: map[string]string{
		good: `<html><body><a href="/local/silva-1"><h2>Silva</h2></a></body></html>`,
		good + "?pagina=2":                   `<html><body></body></html>`,
		"https://1122.com.uy/local/silva-1": detailHTML("Electricidad Silva"),
	}}
	importer := &fakeImporter{}

	cats := []categories.Category{
		{Code: "plomero", PRD: "PRD1000922", Label: "Sanitarios"},
		electricista(),
	}
	svc := NewService(fetcher, importer, &fakeSeen{seen: map[string]bool{}}, nil, testOptions())

	runs, err := svc.Run(context.Background(), cats)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The failing category yields an empty run (all pages failed to fetch),
	// the good one still scrapes.
	var total int
	for _, run := range runs {
		total += len(run.Listings)
	}
	if total != 1 {
		t.Fatalf("expected 1 listing across runs, got %d", total)
	}
}

func TestIndexURLPagination(t *testing.T) {
	svc := NewService(&fakeFetcher{}, nil, nil, nil, testOptions())
	cat := electricista()

	first := svc.indexURL(cat, 1)
	want := "https://1122.com.uy/rubro-zona/montevideo/electricistas/PRD1000390/Z01000"
	if first != want {
		t.Errorf("indexURL page 1 = %q; want %q", first, want)
	}
	if got := svc.indexURL(cat, 2); got != want+"?pagina=2" {
		t.Errorf("indexURL page 2 = %q", got)
	}
}
