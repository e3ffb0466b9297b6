package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type CreateNpcLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateNpcLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateNpcLogic {
	return &CreateNpcLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CreateNpcLogic) CreateNpc(req *types.CreateNpcRequest) (*game.NPC, error) {
	npc, err := l.svcCtx.Engine.CreateNPC(l.ctx, req.BonfireId, req.WalletAddress, game.NPCDraft{
		Name:          req.Name,
		Room:          req.RoomId,
		Personality:   req.Personality,
		Description:   req.Description,
		DialogueStyle: req.DialogueStyle,
	})
	if err != nil {
		return nil, err
	}
	return &npc, nil
}
