// Package kalshi implements the REST client for the Kalshi exchange API. The
// market-data endpoints the scanner uses are public; when an API key and RSA
// private key are configured, every request is additionally signed with
// Kalshi's RSA-PSS scheme so the same client works against keyed deployments.
package kalshi

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

const defaultPageLimit = 200

// Client is the REST client for the Kalshi exchange API.
type Client struct {
	baseURL    string
	apiKeyID   string
	privateKey *rsa.PrivateKey
	pageLimit  int
	httpClient *http.Client
}

// NewClient creates a new Kalshi REST client.
//
// baseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
// apiKeyID may be empty for unauthenticated market-data access. pageLimit
// bounds the events-per-page request size (the exchange caps it at 200).
func NewClient(baseURL, apiKeyID string, pageLimit int, timeout time.Duration) *Client {
	if pageLimit <= 0 || pageLimit > defaultPageLimit {
		pageLimit = defaultPageLimit
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		apiKeyID:  apiKeyID,
		pageLimit: pageLimit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetRSAPrivateKey loads an RSA private key from PEM-encoded bytes and
// configures the client for RSA-signed authentication.
func (c *Client) SetRSAPrivateKey(pemBytes []byte) error {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return fmt.Errorf("kalshi: no PEM block found in private key")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS1 as fallback.
		pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if pkcs1Err != nil {
			return fmt.Errorf("kalshi: parse private key: %w (pkcs1: %v)", err, pkcs1Err)
		}
		c.privateKey = pkcs1Key
		return nil
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return fmt.Errorf("kalshi: expected RSA private key, got %T", key)
	}
	c.privateKey = rsaKey
	return nil
}

// ListOpenEvents returns one page of the exchange's open-events listing.
// An empty cursor requests the first page; the returned page's Cursor is
// empty when the listing is exhausted.
func (c *Client) ListOpenEvents(ctx context.Context, cursor string) (domain.EventsPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.pageLimit))
	params.Set("status", "open")
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	path := "/events?" + params.Encode()

	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return domain.EventsPage{}, fmt.Errorf("kalshi: list open events: %w", err)
	}

	var resp struct {
		Events []apiEvent `json:"events"`
		Cursor string     `json:"cursor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.EventsPage{}, fmt.Errorf("kalshi: decode events: %w", err)
	}

	page := domain.EventsPage{Cursor: resp.Cursor}
	page.Events = make([]domain.EventSummary, 0, len(resp.Events))
	for _, e := range resp.Events {
		page.Events = append(page.Events, e.toSummary())
	}
	return page, nil
}

// GetEventDetail returns an event together with its markets.
func (c *Client) GetEventDetail(ctx context.Context, eventTicker string) (domain.EventDetail, error) {
	path := fmt.Sprintf("/events/%s", url.PathEscape(eventTicker))

	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return domain.EventDetail{}, fmt.Errorf("kalshi: get event %s: %w", eventTicker, err)
	}

	var resp struct {
		Event   apiEvent    `json:"event"`
		Markets []apiMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.EventDetail{}, fmt.Errorf("kalshi: decode event detail: %w", err)
	}

	detail := domain.EventDetail{Event: resp.Event.toInfo()}
	detail.Markets = make([]domain.MarketQuote, 0, len(resp.Markets))
	for _, m := range resp.Markets {
		detail.Markets = append(detail.Markets, m.toQuote())
	}
	return detail, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doRequest builds, optionally signs, sends, and reads an HTTP request
// against the Kalshi API.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// Sign only when credentials are configured; market data is public.
	if c.privateKey != nil {
		if err := c.signRequest(req, method, path); err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := c.checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// signRequest adds RSA authentication headers to the HTTP request.
// Kalshi uses RSA-PSS-SHA256 signatures over the timestamp + method + path
// message string.
func (c *Client) signRequest(req *http.Request, method, path string) error {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	// The message to sign is: timestamp + method + path
	message := ts + method + path

	hash := sha256.Sum256([]byte(message))
	signature, err := rsa.SignPSS(rand.Reader, c.privateKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return fmt.Errorf("RSA sign: %w", err)
	}

	encodedSig := base64.StdEncoding.EncodeToString(signature)

	req.Header.Set("KALSHI-ACCESS-KEY", c.apiKeyID)
	req.Header.Set("KALSHI-ACCESS-SIGNATURE", encodedSig)
	req.Header.Set("KALSHI-ACCESS-TIMESTAMP", ts)

	return nil
}

// checkStatus maps non-2xx HTTP status codes to appropriate errors.
func (c *Client) checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr apiErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("kalshi: %w: %s (%s)", domain.ErrNotFound, apiErr.Message, apiErr.Code)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("kalshi: %w: %s (%s)", domain.ErrUnauthorized, apiErr.Message, apiErr.Code)
	case http.StatusTooManyRequests:
		return fmt.Errorf("kalshi: %w: %s (%s)", domain.ErrRateLimited, apiErr.Message, apiErr.Code)
	default:
		return fmt.Errorf("kalshi: HTTP %d: %s (%s)", statusCode, apiErr.Message, apiErr.Code)
	}
}
