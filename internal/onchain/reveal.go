package onchain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cuihairu/bonfire/internal/game"
)

// RevealClient proxies the purchased-agent key reveal handshake to the
// agent marketplace.
type RevealClient struct {
	base   string
	apiKey string
	http   *http.Client
}

type RevealConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewRevealClient(cfg RevealConfig) *RevealClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:8000"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = defaultHTTPClient(cfg.Timeout)
	}
	return &RevealClient{base: base, apiKey: cfg.APIKey, http: hc}
}

func (c *RevealClient) purchaseURL(purchaseID, action string) (string, error) {
	purchaseID = strings.TrimSpace(purchaseID)
	if purchaseID == "" {
		return "", fmt.Errorf("%w: purchase_id is required", game.ErrInvalidArgument)
	}
	return fmt.Sprintf("%s/purchased-agents/%s/%s", c.base, url.PathEscape(purchaseID), action), nil
}

// RevealNonce fetches the nonce the purchaser must sign.
func (c *RevealClient) RevealNonce(ctx context.Context, purchaseID string) (map[string]any, error) {
	u, err := c.purchaseURL(purchaseID, "reveal_nonce")
	if err != nil {
		return nil, err
	}
	return doJSON(ctx, c.http, http.MethodGet, u, c.apiKey, nil)
}

// RevealAPIKey exchanges a signed nonce for the agent api key.
func (c *RevealClient) RevealAPIKey(ctx context.Context, purchaseID, nonce, signature string) (map[string]any, error) {
	u, err := c.purchaseURL(purchaseID, "reveal_api_key")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(nonce) == "" || strings.TrimSpace(signature) == "" {
		return nil, fmt.Errorf("%w: nonce and signature are required", game.ErrInvalidArgument)
	}
	return doJSON(ctx, c.http, http.MethodPost, u, c.apiKey, map[string]string{"nonce": nonce, "signature": signature})
}

// VerifyPurchase reports whether the marketplace knows purchaseID. A 404
// yields false with no error.
func (c *RevealClient) VerifyPurchase(ctx context.Context, purchaseID string) (bool, error) {
	_, err := c.RevealNonce(ctx, purchaseID)
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}
