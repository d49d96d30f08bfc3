package magento

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is a backend-computed amount. The client never does arithmetic on
// these; decimals are kept only so values round-trip losslessly.
type Money struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

type Image struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

type RichText struct {
	HTML string `json:"html"`
}

type PageInfo struct {
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

type PriceRange struct {
	MinimumPrice struct {
		RegularPrice Money `json:"regular_price"`
		FinalPrice   Money `json:"final_price"`
	} `json:"minimum_price"`
}

type CategoryRef struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	URLPath string `json:"url_path"`
}

type Product struct {
	ID               int           `json:"id"`
	SKU              string        `json:"sku"`
	Name             string        `json:"name"`
	PriceRange       PriceRange    `json:"price_range"`
	Image            Image         `json:"image"`
	StockStatus      string        `json:"stock_status"`
	TypeID           string        `json:"type_id"`
	URLKey           string        `json:"url_key"`
	Description      RichText      `json:"description"`
	ShortDescription RichText      `json:"short_description"`
	Categories       []CategoryRef `json:"categories"`
	MediaGallery     []Image       `json:"media_gallery"`
}

// Price is the final unit price the backend advertises for the product.
func (p Product) Price() Money {
	return p.PriceRange.MinimumPrice.FinalPrice
}

func (p Product) InStock() bool {
	return p.StockStatus == "IN_STOCK"
}

type ProductPage struct {
	Items      []Product `json:"items"`
	TotalCount int       `json:"total_count"`
	PageInfo   PageInfo  `json:"page_info"`
}

type Category struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	URLPath       string     `json:"url_path"`
	URLKey        string     `json:"url_key"`
	Level         int        `json:"level"`
	ChildrenCount int        `json:"children_count"`
	Position      int        `json:"position"`
	IncludeInMenu int        `json:"include_in_menu"`
	Children      []Category `json:"children"`
}

type CartItemPrices struct {
	Price    Money `json:"price"`
	RowTotal Money `json:"row_total"`
}

type CartProduct struct {
	Name  string `json:"name"`
	SKU   string `json:"sku"`
	Image Image  `json:"image"`
}

// CartItem mirrors one server-side line item. The item id comes back as a
// GraphQL ID; removeItemFromCart wants it as an Int.
type CartItem struct {
	ID       json.Number    `json:"id"`
	Product  CartProduct    `json:"product"`
	Quantity float64        `json:"quantity"`
	Prices   CartItemPrices `json:"prices"`
}

// NumericID converts the line item id for mutations that take an Int.
func (i CartItem) NumericID() int {
	n, err := strconv.Atoi(i.ID.String())
	if err != nil {
		return 0
	}
	return n
}

type CartPrices struct {
	GrandTotal Money `json:"grand_total"`
}

type Cart struct {
	ID     string     `json:"id"`
	Items  []CartItem `json:"items"`
	Prices CartPrices `json:"prices"`
}

func (c Cart) GrandTotal() Money {
	return c.Prices.GrandTotal
}

type Region struct {
	RegionCode string `json:"region_code"`
	RegionID   int    `json:"region_id"`
	Region     string `json:"region"`
}

type Address struct {
	ID              int      `json:"id"`
	CustomerID      int      `json:"customer_id"`
	Region          Region   `json:"region"`
	CountryID       string   `json:"country_id"`
	Street          []string `json:"street"`
	Company         string   `json:"company"`
	Telephone       string   `json:"telephone"`
	Postcode        string   `json:"postcode"`
	City            string   `json:"city"`
	Firstname       string   `json:"firstname"`
	Lastname        string   `json:"lastname"`
	DefaultShipping bool     `json:"default_shipping"`
	DefaultBilling  bool     `json:"default_billing"`
}

type Customer struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	DateOfBirth  string    `json:"date_of_birth"`
	Gender       int       `json:"gender"`
	Taxvat       string    `json:"taxvat"`
	IsSubscribed bool      `json:"is_subscribed"`
	GroupID      int       `json:"group_id"`
	CreatedAt    string    `json:"created_at"`
	Addresses    []Address `json:"addresses"`
}

type CustomerPage struct {
	Items      []Customer `json:"items"`
	TotalCount int        `json:"total_count"`
	PageInfo   PageInfo   `json:"page_info"`
}

type OrderAddress struct {
	Firstname   string   `json:"firstname"`
	Lastname    string   `json:"lastname"`
	Street      []string `json:"street"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	Postcode    string   `json:"postcode"`
	CountryCode string   `json:"country_code"`
	Telephone   string   `json:"telephone"`
}

type OrderItem struct {
	ID              json.Number `json:"id"`
	ProductName     string      `json:"product_name"`
	ProductSKU      string      `json:"product_sku"`
	QuantityOrdered float64     `json:"quantity_ordered"`
	Price           Money       `json:"price"`
	RowTotal        Money       `json:"row_total"`
}

type OrderPayment struct {
	Method     string `json:"method"`
	AmountPaid Money  `json:"amount_paid"`
}

type OrderTotals struct {
	Subtotal   Money `json:"subtotal"`
	Shipping   Money `json:"shipping"`
	Tax        Money `json:"tax"`
	GrandTotal Money `json:"grand_total"`
}

type Order struct {
	ID                json.Number  `json:"id"`
	OrderNumber       string       `json:"order_number"`
	CreatedAt         string       `json:"created_at"`
	GrandTotal        Money        `json:"grand_total"`
	Status            string       `json:"status"`
	State             string       `json:"state"`
	CustomerEmail     string       `json:"customer_email"`
	CustomerFirstname string       `json:"customer_firstname"`
	CustomerLastname  string       `json:"customer_lastname"`
	BillingAddress    OrderAddress `json:"billing_address"`
	ShippingAddress   OrderAddress `json:"shipping_address"`
	Items             []OrderItem  `json:"items"`
	Payment           OrderPayment `json:"payment"`
	ShippingMethod    string       `json:"shipping_method"`
	Total             OrderTotals  `json:"total"`
}

type OrderPage struct {
	Items      []Order  `json:"items"`
	TotalCount int      `json:"total_count"`
	PageInfo   PageInfo `json:"page_info"`
}
