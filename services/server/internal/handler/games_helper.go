package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/cuihairu/bonfire/internal/completion"
	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/internal/onchain"
	"github.com/cuihairu/bonfire/internal/scheduler"
)

// errorStatus maps engine and collaborator errors to HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrAlreadyClaimed), errors.Is(err, game.ErrConflict), errors.Is(err, scheduler.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, game.ErrQuotaExhausted), errors.Is(err, game.ErrCooldown):
		return http.StatusTooManyRequests
	case errors.Is(err, game.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, game.ErrPaymentInvalid):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrDecisionUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, game.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, completion.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, completion.ErrUpstream), errors.Is(err, onchain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeGameError(ctx context.Context, w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logx.WithContext(ctx).Errorf("request failed: %v", err)
		httpx.ErrorCtx(ctx, w, err)
		return
	}
	httpx.WriteJsonCtx(ctx, w, status, map[string]any{"message": err.Error()})
}
