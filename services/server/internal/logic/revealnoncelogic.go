package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RevealNonceLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRevealNonceLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RevealNonceLogic {
	return &RevealNonceLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RevealNonceLogic) RevealNonce(req *types.RevealNonceRequest) (map[string]any, error) {
	return l.svcCtx.Reveal.RevealNonce(l.ctx, req.PurchaseId)
}
