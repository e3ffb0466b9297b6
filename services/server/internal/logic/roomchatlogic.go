package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RoomChatLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRoomChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RoomChatLogic {
	return &RoomChatLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RoomChatLogic) RoomChat(req *types.RoomQuery) (*types.RoomChatResponse, error) {
	msgs, err := l.svcCtx.Engine.RoomChat(l.ctx, req.BonfireId, req.RoomId, req.Limit)
	if err != nil {
		return nil, err
	}
	return &types.RoomChatResponse{RoomId: req.RoomId, Messages: msgs}, nil
}
