// Package payment wraps the PayPal REST API: client-credentials token
// exchange, order creation and order capture.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client talks to the PayPal REST API. All calls share a fixed 5 second
// timeout; failures are surfaced to the caller, never retried.
type Client struct {
	baseURL  string
	clientID string
	secret   string
	http     *http.Client
}

// NewClient creates a PayPal client for the given environment base URL.
func NewClient(baseURL, clientID, secret string) *Client {
	return &Client{
		baseURL:  baseURL,
		clientID: clientID,
		secret:   secret,
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

// CreateOrderResult is the provider's reply to a create-order call.
type CreateOrderResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CaptureResult is the flattened outcome of a capture call.
type CaptureResult struct {
	OrderID       string
	TransactionID string
	Status        string
	PayerEmail    string
	PayerName     string
	AmountValue   float64
	Currency      string
}

// AccessToken exchanges the client credentials for a bearer token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &body); err != nil {
		return "", fmt.Errorf("paypal token exchange failed: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("paypal token exchange returned an empty token")
	}
	return body.AccessToken, nil
}

// CreateOrder creates a provider order for the given amount.
func (c *Client) CreateOrder(ctx context.Context, value float64, currency string) (*CreateOrderResult, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"amount": map[string]string{
				"currency_code": currency,
				"value":         strconv.FormatFloat(value, 'f', 2, 64),
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var result CreateOrderResult
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("paypal create order failed: %w", err)
	}
	return &result, nil
}

// CaptureOrder captures an approved provider order and flattens the payer
// and amount details out of the reply.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/checkout/orders/"+orderID+"/capture", bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var reply struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Payer  struct {
			Email string `json:"email_address"`
			Name  struct {
				GivenName string `json:"given_name"`
				Surname   string `json:"surname"`
			} `json:"name"`
		} `json:"payer"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID     string `json:"id"`
					Amount struct {
						CurrencyCode string `json:"currency_code"`
						Value        string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := c.do(req, &reply); err != nil {
		return nil, fmt.Errorf("paypal capture failed: %w", err)
	}

	result := &CaptureResult{
		OrderID:    reply.ID,
		Status:     reply.Status,
		PayerEmail: reply.Payer.Email,
		PayerName:  joinName(reply.Payer.Name.GivenName, reply.Payer.Name.Surname),
	}
	if len(reply.PurchaseUnits) > 0 && len(reply.PurchaseUnits[0].Payments.Captures) > 0 {
		capture := reply.PurchaseUnits[0].Payments.Captures[0]
		result.TransactionID = capture.ID
		result.Currency = capture.Amount.CurrencyCode
		if v, err := strconv.ParseFloat(capture.Amount.Value, 64); err == nil {
			result.AmountValue = v
		}
	}
	return result, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func joinName(given, surname string) string {
	switch {
	case given == "":
		return surname
	case surname == "":
		return given
	default:
		return given + " " + surname
	}
}
