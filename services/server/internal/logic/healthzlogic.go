package logic

import (
	"context"
	"time"

	"github.com/cuihairu/bonfire/internal/cli/common"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type HealthzLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHealthzLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthzLogic {
	return &HealthzLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HealthzLogic) Healthz() (*types.HealthzResponse, error) {
	return &types.HealthzResponse{
		Status: "ok",
		Logs:   common.GetLogCounters(),
		Uptime: time.Since(l.svcCtx.StartedAt).Round(time.Second).String(),
	}, nil
}
