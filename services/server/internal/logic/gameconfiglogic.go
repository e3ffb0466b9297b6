package logic

import (
	"context"
	"time"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GameConfigLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGameConfigLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GameConfigLogic {
	return &GameConfigLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GameConfigLogic) GameConfig() (*types.GameConfigResponse, error) {
	c := l.svcCtx.Config
	req, err := l.svcCtx.Payments.Requirements("")
	if err != nil {
		return nil, err
	}
	t := l.svcCtx.Engine.Tuning()
	return &types.GameConfigResponse{
		RegistryAddress:           c.Ownership.RegistryAddress,
		Payment:                   req,
		PaymentDefaultAmount:      c.Payment.DefaultAmount,
		QuestClaimCooldownSeconds: int(t.QuestClaimCooldown / time.Second),
		StackIntervalSeconds:      l.svcCtx.Scheduler.Status().IntervalSeconds,
		DefaultQuota:              t.DefaultQuota,
		DefaultRecharge:           t.DefaultRecharge,
		OwnershipMode:             c.Ownership.Mode,
	}, nil
}
