package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/cuihairu/bonfire/internal/auth/rbac"
	"github.com/cuihairu/bonfire/internal/game"
)

const (
	maxPeekBody = 1 << 20
	// createPath is the only route allowed to claim an unowned bonfire.
	createPath = "/game/create"
)

// OwnerChecker answers whether wallet owns the bonfire.
type OwnerChecker interface {
	IsOwner(ctx context.Context, wallet, bonfireID string) (bool, error)
	Claim(ctx context.Context, wallet, bonfireID string) (bool, error)
}

// RoleMiddleware lets player routes through and requires the bonfire owner's
// wallet on owner routes.
type RoleMiddleware struct {
	enforcer *rbac.Enforcer
	owners   OwnerChecker
}

func NewRoleMiddleware(enforcer *rbac.Enforcer, owners OwnerChecker) *RoleMiddleware {
	return &RoleMiddleware{enforcer: enforcer, owners: owners}
}

func (m *RoleMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, method := r.URL.Path, r.Method
		if m.enforcer.Allowed(rbac.RolePlayer, path, method) {
			next(w, r)
			return
		}
		if !m.enforcer.RequiresOwner(path, method) {
			deny(r.Context(), w, http.StatusForbidden, "route not permitted")
			return
		}
		wallet, bonfireID, err := peekIdentity(r)
		if err != nil {
			deny(r.Context(), w, http.StatusBadRequest, err.Error())
			return
		}
		check := m.owners.IsOwner
		if path == createPath && method == http.MethodPost {
			check = m.owners.Claim
		}
		ok, err := check(r.Context(), wallet, bonfireID)
		switch {
		case err != nil && !errors.Is(err, game.ErrNotFound):
			logx.WithContext(r.Context()).Errorf("ownership lookup bonfire=%s: %v", bonfireID, err)
			deny(r.Context(), w, http.StatusBadGateway, "ownership lookup failed")
			return
		case err != nil || !ok:
			logx.WithContext(r.Context()).Infof("owner route denied: path=%s wallet=%s bonfire=%s", path, wallet, bonfireID)
			deny(r.Context(), w, http.StatusForbidden, "wallet is not the bonfire owner")
			return
		}
		next(w, r)
	}
}

// peekIdentity reads wallet_address and bonfire_id from the JSON body and
// puts the body back for the handler.
func peekIdentity(r *http.Request) (wallet, bonfireID string, err error) {
	var body struct {
		WalletAddress string `json:"wallet_address"`
		BonfireID     string `json:"bonfire_id"`
	}
	if r.Body != nil {
		raw, rerr := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
		_ = r.Body.Close()
		if rerr != nil {
			return "", "", rerr
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				return "", "", errors.New("request body must be a JSON object")
			}
		}
	}
	wallet = game.NormalizeWallet(body.WalletAddress)
	bonfireID = strings.TrimSpace(body.BonfireID)
	if wallet == "" || bonfireID == "" {
		return "", "", errors.New("wallet_address and bonfire_id are required")
	}
	return wallet, bonfireID, nil
}

func deny(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	httpx.WriteJsonCtx(ctx, w, status, map[string]any{
		"code":    status,
		"message": msg,
	})
}
