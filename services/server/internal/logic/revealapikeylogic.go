package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RevealApiKeyLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRevealApiKeyLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RevealApiKeyLogic {
	return &RevealApiKeyLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RevealApiKeyLogic) RevealApiKey(req *types.RevealApiKeyRequest) (map[string]any, error) {
	return l.svcCtx.Reveal.RevealAPIKey(l.ctx, req.PurchaseId, req.Nonce, req.Signature)
}
