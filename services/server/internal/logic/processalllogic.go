package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/scheduler"
	"github.com/cuihairu/bonfire/services/server/internal/svc"

	"github.com/zeromicro/go-zero/core/logx"
)

type ProcessAllLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewProcessAllLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ProcessAllLogic {
	return &ProcessAllLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ProcessAll runs one sweep now through the scheduler guard, so it never
// overlaps a timer sweep.
func (l *ProcessAllLogic) ProcessAll() (*scheduler.Run, error) {
	run, err := l.svcCtx.Scheduler.RunNow(l.ctx)
	if err != nil {
		return nil, err
	}
	l.Infof("manual sweep: processed=%d skipped=%d errors=%d", run.Processed, run.Skipped, run.Errors)
	return &run, nil
}
