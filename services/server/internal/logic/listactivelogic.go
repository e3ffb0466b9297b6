package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type ListActiveLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListActiveLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListActiveLogic {
	return &ListActiveLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListActiveLogic) ListActive() (*types.ListActiveResponse, error) {
	return &types.ListActiveResponse{Games: l.svcCtx.Engine.ListActive(l.ctx)}, nil
}
