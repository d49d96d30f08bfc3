// Package magento is the typed client for the storefront GraphQL API.
// It owns the bearer token shared by every outgoing request and maps
// transport failures onto the error taxonomy the stores consume.
package magento

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/machinebox/graphql"
	"github.com/rs/zerolog"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	gql *graphql.Client
	log zerolog.Logger

	mu    sync.RWMutex
	token string
}

// New builds a client for the GraphQL endpoint at baseURL (the /graphql
// path is appended). A zero timeout falls back to the default.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	endpoint := strings.TrimRight(baseURL, "/") + "/graphql"
	httpc := &http.Client{Timeout: timeout}
	return &Client{
		gql: graphql.NewClient(endpoint, graphql.WithHTTPClient(httpc)),
		log: log.With().Str("component", "magento").Logger(),
	}
}

// SetToken installs the bearer token used by subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken drops the bearer token; requests go out unauthenticated.
func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// run executes one GraphQL request. The token is read at dispatch time, so
// a request built before logout still sees whatever token is current when
// it actually goes out.
func (c *Client) run(ctx context.Context, op string, req *graphql.Request, out any) error {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	err := c.gql.Run(ctx, req, out)
	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("op", op).Str("request_id", reqID).Dur("elapsed", time.Since(start)).Msg("graphql request")
	return classify(err)
}
