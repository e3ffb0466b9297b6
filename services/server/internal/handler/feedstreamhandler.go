package handler

import (
	"net/http"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// FeedStreamHandler upgrades to a websocket that streams the bonfire's
// events as they are committed.
func FeedStreamHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svcCtx.Hub == nil {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusNotFound, map[string]any{"message": "live feed disabled"})
			return
		}
		svcCtx.Hub.ServeHTTP(w, r)
	}
}
