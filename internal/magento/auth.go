package magento

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
)

// GenerateToken exchanges credentials for a customer token. It does not
// install the token; the session store decides what to do with it.
func (c *Client) GenerateToken(ctx context.Context, email, password string) (string, error) {
	req := graphql.NewRequest(generateTokenDoc)
	req.Var("email", email)
	req.Var("password", password)

	var resp struct {
		GenerateCustomerToken struct {
			Token string `json:"token"`
		} `json:"generateCustomerToken"`
	}
	if err := c.run(ctx, "generateCustomerToken", req, &resp); err != nil {
		return "", err
	}
	if resp.GenerateCustomerToken.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", ErrAuth)
	}
	return resp.GenerateCustomerToken.Token, nil
}

// CustomerProfile fetches the profile for the current token.
func (c *Client) CustomerProfile(ctx context.Context) (Customer, error) {
	req := graphql.NewRequest(customerDoc)

	var resp struct {
		Customer *Customer `json:"customer"`
	}
	if err := c.run(ctx, "customer", req, &resp); err != nil {
		return Customer{}, err
	}
	if resp.Customer == nil {
		return Customer{}, fmt.Errorf("%w: no customer for token", ErrAuth)
	}
	return *resp.Customer, nil
}

// RevokeToken invalidates the current token server-side.
func (c *Client) RevokeToken(ctx context.Context) error {
	req := graphql.NewRequest(revokeTokenDoc)

	var resp struct {
		RevokeCustomerToken struct {
			Result bool `json:"result"`
		} `json:"revokeCustomerToken"`
	}
	return c.run(ctx, "revokeCustomerToken", req, &resp)
}
