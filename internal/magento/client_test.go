package magento

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// newServer starts a fake GraphQL endpoint. The handler gets the parsed
// request and writes whatever {data, errors} payload the test wants.
func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, req gqlRequest)) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		handler(w, r, req)
	}))
	t.Cleanup(srv.Close)
	return srv, New(srv.URL, time.Second, zerolog.Nop())
}

func writeData(w http.ResponseWriter, data string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"data":` + data + `}`))
}

func writeErrors(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":` + jsonString(message) + `}]}`))
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestGenerateTokenSuccess(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		if !strings.Contains(req.Query, "generateCustomerToken") {
			t.Errorf("unexpected query: %s", req.Query)
		}
		if req.Variables["email"] != "a@b.com" || req.Variables["password"] != "x" {
			t.Errorf("unexpected variables: %v", req.Variables)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login request must not carry a bearer token")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request correlation id")
		}
		writeData(w, `{"generateCustomerToken":{"token":"T1"}}`)
	})

	tok, err := c.GenerateToken(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if tok != "T1" {
		t.Fatalf("token = %q", tok)
	}
}

func TestGenerateTokenInvalidCredentials(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		writeErrors(w, "The account sign-in was incorrect or your account is disabled temporarily.")
	})

	_, err := c.GenerateToken(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestNetworkFailureClassified(t *testing.T) {
	srv, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {})
	srv.Close()

	_, err := c.GenerateToken(context.Background(), "a@b.com", "x")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestBackendErrorClassified(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		writeErrors(w, "Internal server error")
	})

	_, err := c.Products(context.Background(), 20, 1)
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
}

func TestBearerTokenReadAtDispatchTime(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		if got := r.Header.Get("Authorization"); got != "Bearer T2" {
			t.Errorf("Authorization = %q", got)
		}
		writeData(w, `{"customer":{"id":1,"email":"a@b.com","firstname":"Ana","lastname":"Diaz"}}`)
	})

	c.SetToken("T1")
	c.SetToken("T2") // latest token wins at dispatch
	cust, err := c.CustomerProfile(context.Background())
	if err != nil {
		t.Fatalf("CustomerProfile: %v", err)
	}
	if cust.Firstname != "Ana" {
		t.Fatalf("firstname = %q", cust.Firstname)
	}
}

func TestCustomerProfileNilCustomerIsAuthError(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		writeData(w, `{"customer":null}`)
	})

	_, err := c.CustomerProfile(context.Background())
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestCreateEmptyCart(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		writeData(w, `{"createEmptyCart":"8Xs9qR"}`)
	})

	id, err := c.CreateEmptyCart(context.Background())
	if err != nil {
		t.Fatalf("CreateEmptyCart: %v", err)
	}
	if id != "8Xs9qR" {
		t.Fatalf("cart id = %q", id)
	}
}

func TestAddProductsToCartKeepsServerTotals(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		if req.Variables["sku"] != "SKU1" || req.Variables["quantity"] != 2.0 {
			t.Errorf("unexpected variables: %v", req.Variables)
		}
		writeData(w, `{"addProductsToCart":{"cart":{
			"id":"8Xs9qR",
			"items":[{
				"id":"3",
				"product":{"name":"Radiant Tee","sku":"SKU1","image":{"url":"http://x/img.jpg"}},
				"quantity":2,
				"prices":{"price":{"value":9.99,"currency":"USD"},"row_total":{"value":19.98,"currency":"USD"}}
			}],
			"prices":{"grand_total":{"value":19.98,"currency":"USD"}}
		}}}`)
	})

	cart, err := c.AddProductsToCart(context.Background(), "8Xs9qR", "SKU1", 2)
	if err != nil {
		t.Fatalf("AddProductsToCart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("items = %d", len(cart.Items))
	}
	item := cart.Items[0]
	if item.Product.SKU != "SKU1" || item.Quantity != 2 {
		t.Fatalf("item = %+v", item)
	}
	if item.NumericID() != 3 {
		t.Fatalf("numeric id = %d", item.NumericID())
	}
	if !cart.GrandTotal().Value.Equal(decimal.NewFromFloat(19.98)) {
		t.Fatalf("grand total = %s, want server value 19.98 untouched", cart.GrandTotal().Value)
	}
}

func TestPlaceOrder(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		if req.Variables["cartId"] != "8Xs9qR" {
			t.Errorf("cartId = %v", req.Variables["cartId"])
		}
		writeData(w, `{"placeOrder":{"order":{"order_number":"000000042"}}}`)
	})

	num, err := c.PlaceOrder(context.Background(), "8Xs9qR")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if num != "000000042" {
		t.Fatalf("order number = %q", num)
	}
}

func TestCategoriesDecodeNestedChildren(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		if req.Variables["id"] != "2" {
			t.Errorf("parent id = %v", req.Variables["id"])
		}
		writeData(w, `{"categories":{"items":[
			{"id":3,"name":"Tops","level":2,"children_count":2,"children":[
				{"id":4,"name":"Tees","level":3,"children_count":0},
				{"id":5,"name":"Hoodies","level":3,"children_count":0}
			]}
		]}}`)
	})

	cats, err := c.Categories(context.Background(), "2")
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Tops" {
		t.Fatalf("categories = %+v", cats)
	}
	if len(cats[0].Children) != 2 || cats[0].Children[1].Name != "Hoodies" {
		t.Fatalf("children = %+v", cats[0].Children)
	}
}

func TestProductsDecodePage(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		writeData(w, `{"products":{
			"items":[{
				"id":1,"sku":"WS12","name":"Radiant Tee",
				"price_range":{"minimum_price":{
					"regular_price":{"value":22,"currency":"USD"},
					"final_price":{"value":19.99,"currency":"USD"}
				}},
				"stock_status":"IN_STOCK",
				"categories":[{"id":3,"name":"Tops"}]
			}],
			"total_count":1,
			"page_info":{"total_pages":1,"current_page":1,"page_size":50}
		}}`)
	})

	page, err := c.Products(context.Background(), 50, 1)
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if page.TotalCount != 1 || len(page.Items) != 1 {
		t.Fatalf("page = %+v", page)
	}
	p := page.Items[0]
	if !p.InStock() {
		t.Error("stock status not decoded")
	}
	if !p.Price().Value.Equal(decimal.NewFromFloat(19.99)) {
		t.Fatalf("price = %s", p.Price().Value)
	}
	if page.PageInfo.PageSize != 50 {
		t.Fatalf("page info = %+v", page.PageInfo)
	}
}
