package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type ClaimQuestLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewClaimQuestLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ClaimQuestLogic {
	return &ClaimQuestLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ClaimQuestLogic) ClaimQuest(req *types.ClaimQuestRequest) (*game.ClaimResult, error) {
	res, err := l.svcCtx.Engine.ClaimQuest(l.ctx, game.ClaimParams{
		BonfireID: req.BonfireId,
		QuestID:   req.QuestId,
		Wallet:    req.WalletAddress,
		AgentID:   req.AgentId,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
