package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RechargeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRechargeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RechargeLogic {
	return &RechargeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RechargeLogic) Recharge(req *types.RechargeRequest) (*types.RechargeResponse, error) {
	remaining, err := l.svcCtx.Engine.Recharge(l.ctx, game.RechargeParams{
		BonfireID:       req.BonfireId,
		AgentID:         req.AgentId,
		Amount:          req.Amount,
		RequesterWallet: req.WalletAddress,
	})
	if err != nil {
		return nil, err
	}
	return &types.RechargeResponse{AgentId: req.AgentId, Amount: req.Amount, QuotaRemaining: remaining}, nil
}
