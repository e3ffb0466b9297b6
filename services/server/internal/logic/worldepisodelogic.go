package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type WorldEpisodeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewWorldEpisodeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *WorldEpisodeLogic {
	return &WorldEpisodeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *WorldEpisodeLogic) WorldEpisode(req *types.WorldEpisodeRequest) (*game.Episode, error) {
	ep, err := l.svcCtx.Engine.PublishWorldEpisode(l.ctx, req.BonfireId, req.WalletAddress, req.Content)
	if err != nil {
		return nil, err
	}
	return &ep, nil
}
