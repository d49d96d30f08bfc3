package magento

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
)

// CreateEmptyCart asks the backend for a fresh cart id. Creation is not
// idempotent server-side; callers must not issue it twice per session.
func (c *Client) CreateEmptyCart(ctx context.Context) (string, error) {
	req := graphql.NewRequest(createCartDoc)

	var resp struct {
		CreateEmptyCart string `json:"createEmptyCart"`
	}
	if err := c.run(ctx, "createEmptyCart", req, &resp); err != nil {
		return "", err
	}
	if resp.CreateEmptyCart == "" {
		return "", fmt.Errorf("%w: empty cart id in response", ErrBackend)
	}
	return resp.CreateEmptyCart, nil
}

// FetchCart reads the authoritative cart state.
func (c *Client) FetchCart(ctx context.Context, cartID string) (Cart, error) {
	req := graphql.NewRequest(getCartDoc)
	req.Var("cartId", cartID)

	var resp struct {
		Cart Cart `json:"cart"`
	}
	if err := c.run(ctx, "cart", req, &resp); err != nil {
		return Cart{}, err
	}
	return resp.Cart, nil
}

// AddProductsToCart adds quantity of sku and returns the full updated cart.
// Quantity 0 is a valid Magento idiom for removing the sku.
func (c *Client) AddProductsToCart(ctx context.Context, cartID, sku string, quantity float64) (Cart, error) {
	req := graphql.NewRequest(addToCartDoc)
	req.Var("cartId", cartID)
	req.Var("sku", sku)
	req.Var("quantity", quantity)

	var resp struct {
		AddProductsToCart struct {
			Cart Cart `json:"cart"`
		} `json:"addProductsToCart"`
	}
	if err := c.run(ctx, "addProductsToCart", req, &resp); err != nil {
		return Cart{}, err
	}
	return resp.AddProductsToCart.Cart, nil
}

// RemoveItemFromCart deletes a line item by id and returns the updated cart.
func (c *Client) RemoveItemFromCart(ctx context.Context, cartID string, itemID int) (Cart, error) {
	req := graphql.NewRequest(removeFromCartDoc)
	req.Var("cartId", cartID)
	req.Var("itemId", itemID)

	var resp struct {
		RemoveItemFromCart struct {
			Cart Cart `json:"cart"`
		} `json:"removeItemFromCart"`
	}
	if err := c.run(ctx, "removeItemFromCart", req, &resp); err != nil {
		return Cart{}, err
	}
	return resp.RemoveItemFromCart.Cart, nil
}

// PlaceOrder converts the cart into an order and returns the server-issued
// order number. The backend retires the cart id on success.
func (c *Client) PlaceOrder(ctx context.Context, cartID string) (string, error) {
	req := graphql.NewRequest(placeOrderDoc)
	req.Var("cartId", cartID)

	var resp struct {
		PlaceOrder struct {
			Order struct {
				OrderNumber string `json:"order_number"`
			} `json:"order"`
		} `json:"placeOrder"`
	}
	if err := c.run(ctx, "placeOrder", req, &resp); err != nil {
		return "", err
	}
	if resp.PlaceOrder.Order.OrderNumber == "" {
		return "", fmt.Errorf("%w: no order number in response", ErrBackend)
	}
	return resp.PlaceOrder.Order.OrderNumber, nil
}
