package logic

import (
	"context"
	"strings"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

const noGMAgentWarning = "No dedicated gm_agent_id provided. The game master falls back to the configured evaluator."

type CreateGameLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateGameLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateGameLogic {
	return &CreateGameLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CreateGameLogic) CreateGame(req *types.CreateGameRequest) (*types.CreateGameResponse, error) {
	snap, err := l.svcCtx.Engine.CreateGame(l.ctx, game.CreateParams{
		BonfireID:         req.BonfireId,
		OwnerWallet:       req.WalletAddress,
		Prompt:            req.GamePrompt,
		GMAgentID:         req.GmAgentId,
		InitialQuestCount: req.InitialQuestCount,
	})
	if err != nil {
		return nil, err
	}
	l.Infof("game created: bonfire=%s game=%s quests=%d", snap.BonfireID, snap.GameID, len(snap.Quests))
	resp := &types.CreateGameResponse{
		GameId:        snap.GameID,
		BonfireId:     snap.BonfireID,
		OwnerWallet:   snap.OwnerWallet,
		GamePrompt:    snap.Prompt,
		InitialQuests: snap.Quests,
		Status:        snap.Status,
	}
	if len(snap.Episodes) > 0 {
		resp.InitialEpisodeSummary = snap.Episodes[0].Content
	}
	if strings.TrimSpace(req.GmAgentId) == "" {
		resp.Warning = noGMAgentWarning
	}
	return resp, nil
}
