package billing

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	stripeBaseURL = "https://api.stripe.com/v1"
	stripeTimeout = 15 * time.Second
)

// CustomerClient registers workspaces with the payment processor.
// Registration is best-effort: callers log failures and proceed.
type CustomerClient struct {
	client *resty.Client
}

// NewCustomerClient creates a Stripe API client with the given secret
// key.
func NewCustomerClient(secretKey string) *CustomerClient {
	client := resty.New().
		SetBaseURL(stripeBaseURL).
		SetAuthToken(secretKey).
		SetTimeout(stripeTimeout)

	return &CustomerClient{client: client}
}

type createCustomerResponse struct {
	ID string `json:"id"`
}

// CreateCustomer creates a billing customer for a workspace and
// returns the customer id. The workspace id is attached as metadata so
// webhook events can be traced back.
func (c *CustomerClient) CreateCustomer(ctx context.Context, workspaceID, workspaceName, email string) (string, error) {
	form := url.Values{}
	form.Set("name", workspaceName)
	form.Set("email", email)
	form.Set("metadata[workspace_id]", workspaceID)

	var result createCustomerResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(form.Encode()).
		SetResult(&result).
		Post("/customers")
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("stripe create customer: status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.ID == "" {
		return "", fmt.Errorf("stripe create customer: empty customer id")
	}
	return result.ID, nil
}
