package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type CreateRoomLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateRoomLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateRoomLogic {
	return &CreateRoomLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CreateRoomLogic) CreateRoom(req *types.CreateRoomRequest) (*game.Room, error) {
	room, err := l.svcCtx.Engine.CreateRoom(l.ctx, req.BonfireId, req.WalletAddress, game.RoomDraft{
		Name:        req.Name,
		Description: req.Description,
		Connections: req.Connections,
	})
	if err != nil {
		return nil, err
	}
	l.Infof("room created: bonfire=%s room=%s", req.BonfireId, room.RoomID)
	return &room, nil
}
