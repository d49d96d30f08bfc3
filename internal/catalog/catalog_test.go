package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/magpos/magpos/internal/magento"
)

type fakeBackend struct {
	page    magento.ProductPage
	pageErr error
	cats    []magento.Category
	catsErr error

	productCalls  int
	categoryCalls int
}

func (f *fakeBackend) Products(ctx context.Context, pageSize, currentPage int) (magento.ProductPage, error) {
	f.productCalls++
	return f.page, f.pageErr
}

func (f *fakeBackend) Categories(ctx context.Context, parentID string) ([]magento.Category, error) {
	f.categoryCalls++
	return f.cats, f.catsErr
}

func (f *fakeBackend) Customers(ctx context.Context, pageSize, currentPage int) (magento.CustomerPage, error) {
	return magento.CustomerPage{}, nil
}

func (f *fakeBackend) Orders(ctx context.Context, pageSize, currentPage int) (magento.OrderPage, error) {
	return magento.OrderPage{}, nil
}

func (f *fakeBackend) CustomerOrders(ctx context.Context, customerID, pageSize, currentPage int) (magento.Customer, magento.OrderPage, error) {
	return magento.Customer{}, magento.OrderPage{}, nil
}

func product(sku, name string, cats ...string) magento.Product {
	p := magento.Product{SKU: sku, Name: name}
	for _, c := range cats {
		p.Categories = append(p.Categories, magento.CategoryRef{Name: c})
	}
	return p
}

func TestApplyProductsReplacesWholesale(t *testing.T) {
	s := NewStore(&fakeBackend{}, zerolog.Nop())
	s.ApplyProducts(magento.ProductPage{
		Items:      []magento.Product{product("A", "Alpha"), product("B", "Beta")},
		TotalCount: 2,
	}, nil)
	if len(s.Products()) != 2 || s.TotalCount() != 2 {
		t.Fatalf("first apply: %d items", len(s.Products()))
	}

	// a second fetch fully replaces, never merges
	s.ApplyProducts(magento.ProductPage{
		Items:      []magento.Product{product("C", "Gamma")},
		TotalCount: 1,
	}, nil)
	if len(s.Products()) != 1 || s.Products()[0].SKU != "C" {
		t.Fatalf("second apply did not replace: %+v", s.Products())
	}
}

func TestApplyProductsErrorKeepsPriorCache(t *testing.T) {
	s := NewStore(&fakeBackend{}, zerolog.Nop())
	s.ApplyProducts(magento.ProductPage{Items: []magento.Product{product("A", "Alpha")}}, nil)
	s.ApplyProducts(magento.ProductPage{}, errors.New("down"))
	if s.ProductsErr() == nil {
		t.Fatal("error not recorded")
	}
	if len(s.Products()) != 1 {
		t.Fatal("error wiped the prior cache")
	}
}

func TestFetchIsIdempotentForIdenticalInputs(t *testing.T) {
	api := &fakeBackend{page: magento.ProductPage{
		Items: []magento.Product{product("A", "Alpha")},
	}}
	s := NewStore(api, zerolog.Nop())

	first, err := s.FetchProducts(context.Background(), 20, 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.FetchProducts(context.Background(), 20, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Items) != len(second.Items) || first.Items[0].SKU != second.Items[0].SKU {
		t.Fatalf("same inputs yielded different pages: %+v vs %+v", first, second)
	}
}

func TestMatches(t *testing.T) {
	p := product("WS12-M-Blue", "Radiant Tee", "Tops", "Tees")

	cases := []struct {
		name     string
		term     string
		category string
		want     bool
	}{
		{"empty filter matches", "", "", true},
		{"name substring", "radiant", "", true},
		{"sku substring case-insensitive", "ws12", "", true},
		{"no substring", "hoodie", "", false},
		{"category member", "", "Tops", true},
		{"category case-insensitive", "", "tees", true},
		{"category non-member", "", "Bottoms", false},
		{"term and category both required", "radiant", "Bottoms", false},
		{"term and category both pass", "tee", "Tops", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Matches(p, tc.term, tc.category); got != tc.want {
				t.Fatalf("Matches(%q, %q) = %v, want %v", tc.term, tc.category, got, tc.want)
			}
		})
	}
}

func TestFilteredKeepsCacheOrder(t *testing.T) {
	s := NewStore(&fakeBackend{}, zerolog.Nop())
	s.ApplyProducts(magento.ProductPage{Items: []magento.Product{
		product("B2", "Beta Tee", "Tees"),
		product("A1", "Alpha Tee", "Tees"),
		product("C3", "Gamma Hoodie", "Hoodies"),
	}}, nil)

	got := s.Filtered("tee", "")
	if len(got) != 2 || got[0].SKU != "B2" || got[1].SKU != "A1" {
		t.Fatalf("filtered = %+v", got)
	}
}

func TestSuggestSKU(t *testing.T) {
	s := NewStore(&fakeBackend{}, zerolog.Nop())
	s.ApplyProducts(magento.ProductPage{Items: []magento.Product{
		product("WS12", "Radiant Tee"),
		product("MH07", "Frankie Sweatshirt"),
	}}, nil)

	if got := s.SuggestSKU("WS13"); got != "WS12" {
		t.Fatalf("suggestion = %q, want WS12", got)
	}
	if got := s.SuggestSKU("completely-unrelated-term"); got != "" {
		t.Fatalf("expected no suggestion, got %q", got)
	}
	if got := s.SuggestSKU(""); got != "" {
		t.Fatalf("empty term suggested %q", got)
	}
}

func TestClearDropsEverything(t *testing.T) {
	s := NewStore(&fakeBackend{}, zerolog.Nop())
	s.ApplyProducts(magento.ProductPage{Items: []magento.Product{product("A", "Alpha")}, TotalCount: 1}, nil)
	s.ApplyCategories([]magento.Category{{ID: 3, Name: "Tops"}}, nil)

	s.Clear()
	if len(s.Products()) != 0 || len(s.Categories()) != 0 || s.TotalCount() != 0 {
		t.Fatal("clear left state behind")
	}
}
