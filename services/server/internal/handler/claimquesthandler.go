package handler

import (
	"net/http"

	"github.com/cuihairu/bonfire/services/server/internal/logic"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func ClaimQuestHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ClaimQuestRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewClaimQuestLogic(r.Context(), svcCtx)
		resp, err := l.ClaimQuest(&req)
		if err != nil {
			writeGameError(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
