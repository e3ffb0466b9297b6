package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type InventoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewInventoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *InventoryLogic {
	return &InventoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *InventoryLogic) Inventory(req *types.AgentQuery) (*types.InventoryResponse, error) {
	items, err := l.svcCtx.Engine.Inventory(l.ctx, req.BonfireId, req.AgentId)
	if err != nil {
		return nil, err
	}
	return &types.InventoryResponse{AgentId: req.AgentId, Items: items}, nil
}
