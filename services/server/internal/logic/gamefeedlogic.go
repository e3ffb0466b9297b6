package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GameFeedLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGameFeedLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GameFeedLogic {
	return &GameFeedLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GameFeedLogic) GameFeed(req *types.FeedQuery) (*types.FeedResponse, error) {
	return &types.FeedResponse{
		BonfireId: req.BonfireId,
		Events:    l.svcCtx.Engine.Feed(l.ctx, req.BonfireId, req.Limit),
	}, nil
}
