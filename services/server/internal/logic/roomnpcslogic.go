package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RoomNpcsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRoomNpcsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RoomNpcsLogic {
	return &RoomNpcsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RoomNpcsLogic) RoomNpcs(req *types.RoomQuery) (*types.RoomNpcsResponse, error) {
	npcs, err := l.svcCtx.Engine.RoomNPCs(l.ctx, req.BonfireId, req.RoomId)
	if err != nil {
		return nil, err
	}
	return &types.RoomNpcsResponse{RoomId: req.RoomId, Npcs: npcs}, nil
}
