package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GameStateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGameStateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GameStateLogic {
	return &GameStateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GameStateLogic) GameState(req *types.BonfireQuery) (*game.Snapshot, error) {
	snap, err := l.svcCtx.Engine.State(l.ctx, req.BonfireId)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
