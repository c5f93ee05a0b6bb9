package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
	"github.com/mauritzerick/uploadcaffeine-sub000/internal/infra"
)

// Options configures the payment gateway client.
type Options struct {
	SecretKey      string
	BaseURL        string
	Currency       string
	SuccessURL     string
	CancelURL      string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the Stripe-compatible payment API.
// It holds no local state; every method is a remote call.
type Client struct {
	secretKey  string
	baseURL    string
	currency   string
	successURL string
	cancelURL  string
	httpClient *http.Client
	logger     *infra.Logger
}

// Metadata is supporter-supplied display data attached to a payment. The
// gateway round-trips it opaquely and echoes it back in confirmation events.
type Metadata struct {
	Name       string
	Message    string
	CoffeeType string
}

// PaymentIntent is the normalized result of a one-time payment request.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// CheckoutSession is the normalized result of a subscription checkout request.
type CheckoutSession struct {
	ID string
}

// GatewayError is a non-2xx reply from the gateway, decoded from its error envelope.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type sessionResponse struct {
	ID string `json:"id"`
}

var titleCaser = cases.Title(language.English)

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	currency := strings.ToLower(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = "usd"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		secretKey:  strings.TrimSpace(opts.SecretKey),
		baseURL:    baseURL,
		currency:   currency,
		successURL: opts.SuccessURL,
		cancelURL:  opts.CancelURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.secretKey != ""
}

// CreatePaymentIntent creates a one-time embedded-payment intent. The
// returned client secret is handed to the browser to confirm the payment.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, meta Metadata) (*PaymentIntent, error) {
	if amount < domain.MinAmount {
		return nil, domain.ErrInvalidAmount
	}
	if !c.HasCredentials() {
		return nil, domain.ErrGatewayNotConfigured
	}

	params := url.Values{}
	params.Set("amount", strconv.FormatInt(amount, 10))
	params.Set("currency", c.currency)
	params.Set("description", describeContribution(meta.CoffeeType))
	params.Set("automatic_payment_methods[enabled]", "true")
	setMetadata(params, meta)

	var out intentResponse
	if err := c.post(ctx, "/v1/payment_intents", params, &out); err != nil {
		return nil, err
	}
	c.logger.Info().Str("intent_id", out.ID).Int64("amount", amount).Msg("payment intent created")
	return &PaymentIntent{ID: out.ID, ClientSecret: out.ClientSecret}, nil
}

// CreateCheckoutSession creates a redirect checkout session for a monthly
// recurring contribution.
func (c *Client) CreateCheckoutSession(ctx context.Context, amount int64, meta Metadata) (*CheckoutSession, error) {
	if amount < domain.MinAmount {
		return nil, domain.ErrInvalidAmount
	}
	if !c.HasCredentials() {
		return nil, domain.ErrGatewayNotConfigured
	}

	params := url.Values{}
	params.Set("mode", "subscription")
	params.Set("success_url", c.successURL)
	params.Set("cancel_url", c.cancelURL)
	params.Set("line_items[0][quantity]", "1")
	params.Set("line_items[0][price_data][currency]", c.currency)
	params.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amount, 10))
	params.Set("line_items[0][price_data][recurring][interval]", "month")
	params.Set("line_items[0][price_data][product_data][name]", describeContribution(meta.CoffeeType))
	setMetadata(params, meta)

	var out sessionResponse
	if err := c.post(ctx, "/v1/checkout/sessions", params, &out); err != nil {
		return nil, err
	}
	c.logger.Info().Str("session_id", out.ID).Int64("amount", amount).Msg("checkout session created")
	return &CheckoutSession{ID: out.ID}, nil
}

func (c *Client) post(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope apiErrorEnvelope
		_ = json.Unmarshal(body, &envelope)
		gwErr := &GatewayError{StatusCode: resp.StatusCode, Code: envelope.Error.Code, Message: envelope.Error.Message}
		if gwErr.Message == "" {
			gwErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Error().Int("status", resp.StatusCode).Str("path", path).Msg("gateway request failed")
		return gwErr
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

func setMetadata(params url.Values, meta Metadata) {
	if meta.Name != "" {
		params.Set("metadata[name]", meta.Name)
	}
	if meta.Message != "" {
		params.Set("metadata[message]", meta.Message)
	}
	if meta.CoffeeType != "" {
		params.Set("metadata[coffee_type]", meta.CoffeeType)
	}
}

// describeContribution builds the human-readable label shown on statements
// and checkout pages, e.g. "Espresso Shot for uploadcaffeine".
func describeContribution(coffeeType string) string {
	label := strings.TrimSpace(coffeeType)
	if label == "" {
		return "Coffee for uploadcaffeine"
	}
	return titleCaser.String(strings.ReplaceAll(label, "_", " ")) + " for uploadcaffeine"
}
