package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GMReactLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGMReactLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GMReactLogic {
	return &GMReactLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GMReactLogic) GMReact(req *types.GMReactRequest) (*game.StackResult, error) {
	res, err := l.svcCtx.Engine.GMReact(l.ctx, req.BonfireId, req.AgentId, req.EpisodeId)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
