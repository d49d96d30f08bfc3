// Package catalog mirrors backend product and category listings. Each fetch
// replaces the cache wholesale; there is no merge, and overlapping fetches
// are not fenced: whichever response is applied last wins.
package catalog

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	"github.com/magpos/magpos/internal/magento"
)

// Backend is the slice of the API client the catalog store needs.
type Backend interface {
	Products(ctx context.Context, pageSize, currentPage int) (magento.ProductPage, error)
	Categories(ctx context.Context, parentID string) ([]magento.Category, error)
	Customers(ctx context.Context, pageSize, currentPage int) (magento.CustomerPage, error)
	Orders(ctx context.Context, pageSize, currentPage int) (magento.OrderPage, error)
	CustomerOrders(ctx context.Context, customerID, pageSize, currentPage int) (magento.Customer, magento.OrderPage, error)
}

type Store struct {
	api Backend
	log zerolog.Logger

	products   []magento.Product
	totalCount int
	pageInfo   magento.PageInfo
	categories []magento.Category

	productsErr       error
	categoriesErr     error
	loadingProducts   bool
	loadingCategories bool
}

func NewStore(api Backend, log zerolog.Logger) *Store {
	return &Store{api: api, log: log.With().Str("component", "catalog").Logger()}
}

// FetchProducts loads one page from the backend. Network only; feed the
// result to ApplyProducts.
func (s *Store) FetchProducts(ctx context.Context, pageSize, page int) (magento.ProductPage, error) {
	return s.api.Products(ctx, pageSize, page)
}

// FetchCategories loads the tree under parentID. Network only.
func (s *Store) FetchCategories(ctx context.Context, parentID string) ([]magento.Category, error) {
	return s.api.Categories(ctx, parentID)
}

// The directory listings below are pass-throughs: they are fetched on
// demand for their views and never cached here.

func (s *Store) FetchCustomers(ctx context.Context, pageSize, page int) (magento.CustomerPage, error) {
	return s.api.Customers(ctx, pageSize, page)
}

func (s *Store) FetchOrders(ctx context.Context, pageSize, page int) (magento.OrderPage, error) {
	return s.api.Orders(ctx, pageSize, page)
}

func (s *Store) FetchCustomerOrders(ctx context.Context, customerID, pageSize, page int) (magento.Customer, magento.OrderPage, error) {
	return s.api.CustomerOrders(ctx, customerID, pageSize, page)
}

// ApplyProducts replaces the product cache with the fetched page.
func (s *Store) ApplyProducts(page magento.ProductPage, err error) {
	s.loadingProducts = false
	if err != nil {
		s.productsErr = err
		return
	}
	s.products = page.Items
	s.totalCount = page.TotalCount
	s.pageInfo = page.PageInfo
	s.productsErr = nil
}

// ApplyCategories replaces the category cache.
func (s *Store) ApplyCategories(cats []magento.Category, err error) {
	s.loadingCategories = false
	if err != nil {
		s.categoriesErr = err
		return
	}
	s.categories = cats
	s.categoriesErr = nil
}

func (s *Store) BeginProducts()   { s.loadingProducts = true; s.productsErr = nil }
func (s *Store) BeginCategories() { s.loadingCategories = true; s.categoriesErr = nil }

// Clear drops all cached catalog state, e.g. on logout.
func (s *Store) Clear() {
	s.products = nil
	s.totalCount = 0
	s.pageInfo = magento.PageInfo{}
	s.categories = nil
	s.productsErr = nil
	s.categoriesErr = nil
	s.loadingProducts = false
	s.loadingCategories = false
}

func (s *Store) Products() []magento.Product    { return s.products }
func (s *Store) TotalCount() int                { return s.totalCount }
func (s *Store) PageInfo() magento.PageInfo     { return s.pageInfo }
func (s *Store) Categories() []magento.Category { return s.categories }
func (s *Store) ProductsErr() error             { return s.productsErr }
func (s *Store) CategoriesErr() error           { return s.categoriesErr }
func (s *Store) LoadingProducts() bool          { return s.loadingProducts }
func (s *Store) LoadingCategories() bool        { return s.loadingCategories }

// Matches reports whether a product passes the client-side filter:
// case-insensitive substring match on name or SKU, and membership in the
// selected category when one is set. No backend round trip.
func Matches(p magento.Product, searchTerm, categoryName string) bool {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	if term != "" &&
		!strings.Contains(strings.ToLower(p.Name), term) &&
		!strings.Contains(strings.ToLower(p.SKU), term) {
		return false
	}
	if categoryName == "" {
		return true
	}
	for _, c := range p.Categories {
		if strings.EqualFold(c.Name, categoryName) {
			return true
		}
	}
	return false
}

// Filtered returns the cached products passing the filter, in cache order.
func (s *Store) Filtered(searchTerm, categoryName string) []magento.Product {
	if searchTerm == "" && categoryName == "" {
		return s.products
	}
	out := make([]magento.Product, 0, len(s.products))
	for _, p := range s.products {
		if Matches(p, searchTerm, categoryName) {
			out = append(out, p)
		}
	}
	return out
}

// SuggestSKU returns the cached SKU closest to term by edit distance, for
// the "no results" hint. Empty when the cache is empty or nothing is close.
func (s *Store) SuggestSKU(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return ""
	}
	best := ""
	bestDist := len(term)/2 + 2 // beyond this the suggestion is noise
	for _, p := range s.products {
		d := levenshtein.ComputeDistance(term, strings.ToLower(p.SKU))
		if d < bestDist {
			bestDist = d
			best = p.SKU
		}
	}
	return best
}
