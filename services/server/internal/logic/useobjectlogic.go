package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type UseObjectLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUseObjectLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UseObjectLogic {
	return &UseObjectLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UseObjectLogic) UseObject(req *types.UseObjectRequest) (*game.UseResult, error) {
	res, err := l.svcCtx.Engine.UseObject(l.ctx, req.BonfireId, req.AgentId, req.ObjectId)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
