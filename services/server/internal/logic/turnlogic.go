package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type TurnLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTurnLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TurnLogic {
	return &TurnLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *TurnLogic) Turn(req *types.TurnRequest) (*game.TurnResult, error) {
	msg := req.Action
	if msg == "" {
		msg = req.Message
	}
	res, err := l.svcCtx.Engine.TakeTurn(l.ctx, game.TurnParams{
		BonfireID:    req.BonfireId,
		AgentID:      req.AgentId,
		Message:      msg,
		AsGameMaster: req.AsGameMaster,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
