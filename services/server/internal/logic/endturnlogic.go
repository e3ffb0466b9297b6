package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type EndTurnLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewEndTurnLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EndTurnLogic {
	return &EndTurnLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// EndTurn flushes the agent's stack and returns the map as the game master
// left it.
func (l *EndTurnLogic) EndTurn(req *types.AgentRequest) (*types.EndTurnResponse, error) {
	eng := l.svcCtx.Engine
	res, err := eng.ProcessStack(l.ctx, req.BonfireId, req.AgentId)
	if err != nil {
		return nil, err
	}
	m, err := eng.Map(l.ctx, req.BonfireId)
	if err != nil {
		return nil, err
	}
	return &types.EndTurnResponse{StackResult: res, Map: m}, nil
}
