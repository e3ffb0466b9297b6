package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type ProcessStackLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewProcessStackLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ProcessStackLogic {
	return &ProcessStackLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ProcessStackLogic) ProcessStack(req *types.AgentRequest) (*game.StackResult, error) {
	res, err := l.svcCtx.Engine.ProcessStack(l.ctx, req.BonfireId, req.AgentId)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
