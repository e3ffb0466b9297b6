package onchain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cuihairu/bonfire/internal/game"
)

// OwnershipVerifier answers whether wallet owns the bonfire. Claim is asked
// only when a game is being created; a verifier that assigns owners does so
// there and nowhere else.
type OwnershipVerifier interface {
	IsOwner(ctx context.Context, wallet, bonfireID string) (bool, error)
	Claim(ctx context.Context, wallet, bonfireID string) (bool, error)
}

// RegistryVerifier asks an external registry for the bonfire owner:
// GET {base}/bonfires/{id}/owner -> {"owner_wallet": "0x..."}.
type RegistryVerifier struct {
	base     string
	apiKey   string
	registry string
	http     *http.Client
}

type RegistryConfig struct {
	BaseURL         string
	APIKey          string
	RegistryAddress string
	Timeout         time.Duration
	HTTPClient      *http.Client
}

func NewRegistryVerifier(cfg RegistryConfig) *RegistryVerifier {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = defaultHTTPClient(cfg.Timeout)
	}
	return &RegistryVerifier{base: strings.TrimRight(cfg.BaseURL, "/"), apiKey: cfg.APIKey, registry: cfg.RegistryAddress, http: hc}
}

func (v *RegistryVerifier) Owner(ctx context.Context, bonfireID string) (string, error) {
	u := fmt.Sprintf("%s/bonfires/%s/owner", v.base, url.PathEscape(bonfireID))
	if v.registry != "" {
		u += "?registry=" + url.QueryEscape(v.registry)
	}
	out, err := doJSON(ctx, v.http, http.MethodGet, u, v.apiKey, nil)
	if err != nil {
		return "", err
	}
	owner, _ := out["owner_wallet"].(string)
	if owner == "" {
		return "", fmt.Errorf("bonfire %q: %w", bonfireID, game.ErrNotFound)
	}
	return game.NormalizeWallet(owner), nil
}

func (v *RegistryVerifier) IsOwner(ctx context.Context, wallet, bonfireID string) (bool, error) {
	owner, err := v.Owner(ctx, bonfireID)
	if err != nil {
		return false, err
	}
	return owner == game.NormalizeWallet(wallet), nil
}

// Claim defers to the registry, which alone assigns owners.
func (v *RegistryVerifier) Claim(ctx context.Context, wallet, bonfireID string) (bool, error) {
	return v.IsOwner(ctx, wallet, bonfireID)
}

// FirstClaimVerifier links a bonfire to the first wallet that creates a game
// in it. Used when no registry is configured.
type FirstClaimVerifier struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewFirstClaimVerifier() *FirstClaimVerifier {
	return &FirstClaimVerifier{owners: map[string]string{}}
}

// IsOwner never assigns an owner; unclaimed bonfires have none.
func (v *FirstClaimVerifier) IsOwner(_ context.Context, wallet, bonfireID string) (bool, error) {
	w := game.NormalizeWallet(wallet)
	if w == "" {
		return false, nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	owner, ok := v.owners[bonfireID]
	return ok && owner == w, nil
}

// Claim assigns an unclaimed bonfire to wallet and reports whether wallet
// owns it afterwards.
func (v *FirstClaimVerifier) Claim(_ context.Context, wallet, bonfireID string) (bool, error) {
	w := game.NormalizeWallet(wallet)
	if w == "" {
		return false, nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	owner, ok := v.owners[bonfireID]
	if !ok {
		v.owners[bonfireID] = w
		return true, nil
	}
	return owner == w, nil
}

var (
	_ OwnershipVerifier = (*RegistryVerifier)(nil)
	_ OwnershipVerifier = (*FirstClaimVerifier)(nil)
)
