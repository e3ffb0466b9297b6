package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RoomMapLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRoomMapLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RoomMapLogic {
	return &RoomMapLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RoomMapLogic) RoomMap(req *types.BonfireQuery) (*game.RoomMap, error) {
	m, err := l.svcCtx.Engine.Map(l.ctx, req.BonfireId)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
