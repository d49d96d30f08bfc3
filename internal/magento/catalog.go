package magento

import (
	"context"

	"github.com/machinebox/graphql"
)

// Products fetches one page of the product listing.
func (c *Client) Products(ctx context.Context, pageSize, currentPage int) (ProductPage, error) {
	req := graphql.NewRequest(productsDoc)
	req.Var("pageSize", pageSize)
	req.Var("currentPage", currentPage)

	var resp struct {
		Products ProductPage `json:"products"`
	}
	if err := c.run(ctx, "products", req, &resp); err != nil {
		return ProductPage{}, err
	}
	return resp.Products, nil
}

// Categories fetches the category nodes under parentID. An empty parentID
// sends a null filter value, which the backend treats as the root.
func (c *Client) Categories(ctx context.Context, parentID string) ([]Category, error) {
	req := graphql.NewRequest(categoriesDoc)
	if parentID != "" {
		req.Var("id", parentID)
	}

	var resp struct {
		Categories struct {
			Items []Category `json:"items"`
		} `json:"categories"`
	}
	if err := c.run(ctx, "categories", req, &resp); err != nil {
		return nil, err
	}
	return resp.Categories.Items, nil
}

// Customers fetches one page of the customer directory.
func (c *Client) Customers(ctx context.Context, pageSize, currentPage int) (CustomerPage, error) {
	req := graphql.NewRequest(customersDoc)
	req.Var("pageSize", pageSize)
	req.Var("currentPage", currentPage)

	var resp struct {
		Customers CustomerPage `json:"customers"`
	}
	if err := c.run(ctx, "customers", req, &resp); err != nil {
		return CustomerPage{}, err
	}
	return resp.Customers, nil
}

// Orders fetches one page of the store-wide order history.
func (c *Client) Orders(ctx context.Context, pageSize, currentPage int) (OrderPage, error) {
	req := graphql.NewRequest(ordersDoc)
	req.Var("pageSize", pageSize)
	req.Var("currentPage", currentPage)

	var resp struct {
		Orders OrderPage `json:"orders"`
	}
	if err := c.run(ctx, "orders", req, &resp); err != nil {
		return OrderPage{}, err
	}
	return resp.Orders, nil
}

// CustomerOrders fetches one page of a single customer's order history.
func (c *Client) CustomerOrders(ctx context.Context, customerID, pageSize, currentPage int) (Customer, OrderPage, error) {
	req := graphql.NewRequest(customerOrdersDoc)
	req.Var("customerId", customerID)
	req.Var("pageSize", pageSize)
	req.Var("currentPage", currentPage)

	var resp struct {
		Customer struct {
			Customer
			Orders OrderPage `json:"orders"`
		} `json:"customer"`
	}
	if err := c.run(ctx, "customer", req, &resp); err != nil {
		return Customer{}, OrderPage{}, err
	}
	return resp.Customer.Customer, resp.Customer.Orders, nil
}
