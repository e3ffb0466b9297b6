package logic

import (
	"context"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type TimerStatusLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTimerStatusLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TimerStatusLogic {
	return &TimerStatusLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *TimerStatusLogic) TimerStatus() (*types.TimerStatusResponse, error) {
	dropped, failed := l.svcCtx.Publisher.Stats()
	return &types.TimerStatusResponse{
		Status:      l.svcCtx.Scheduler.Status(),
		FeedDropped: dropped,
		FeedFailed:  failed,
	}, nil
}
