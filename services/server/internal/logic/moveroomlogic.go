package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type MoveRoomLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMoveRoomLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MoveRoomLogic {
	return &MoveRoomLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *MoveRoomLogic) MoveRoom(req *types.MoveRoomRequest) (*types.MoveRoomResponse, error) {
	room, err := l.svcCtx.Engine.MovePlayer(l.ctx, req.BonfireId, req.AgentId, req.RoomId)
	if err != nil {
		return nil, err
	}
	return &types.MoveRoomResponse{AgentId: req.AgentId, Room: room}, nil
}
