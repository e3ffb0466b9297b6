package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GrantObjectLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGrantObjectLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GrantObjectLogic {
	return &GrantObjectLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GrantObjectLogic) GrantObject(req *types.GrantObjectRequest) (*game.Object, error) {
	obj, err := l.svcCtx.Engine.GrantObject(l.ctx, req.BonfireId, req.WalletAddress, req.ObjectId, req.AgentId)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}
