package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type CreateQuestLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateQuestLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateQuestLogic {
	return &CreateQuestLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CreateQuestLogic) CreateQuest(req *types.CreateQuestRequest) (*game.Quest, error) {
	q, err := l.svcCtx.Engine.CreateQuest(l.ctx, req.BonfireId, req.WalletAddress, game.QuestDraft{
		Description: req.Prompt,
		Keyword:     req.Keyword,
		Reward:      req.Reward,
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}
