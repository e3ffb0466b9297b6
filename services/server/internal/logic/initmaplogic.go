package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type InitMapLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewInitMapLogic(ctx context.Context, svcCtx *svc.ServiceContext) *InitMapLogic {
	return &InitMapLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// InitMap is idempotent: it only creates the starting room when missing and
// places agents that have no room yet.
func (l *InitMapLogic) InitMap(req *types.BonfireRequest) (*game.RoomMap, error) {
	m, err := l.svcCtx.Engine.InitMap(l.ctx, req.BonfireId)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
