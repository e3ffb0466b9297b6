package handler

import (
	"net/http"

	"github.com/cuihairu/bonfire/services/server/internal/logic"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func CreateGameHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateGameRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewCreateGameLogic(r.Context(), svcCtx)
		resp, err := l.CreateGame(&req)
		if err != nil {
			writeGameError(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
