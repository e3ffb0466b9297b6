package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RestoreLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRestoreLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RestoreLogic {
	return &RestoreLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RestoreLogic) Restore(req *types.RestoreRequest) (*types.RestoreResponse, error) {
	players, err := l.svcCtx.Engine.RestoreAgents(l.ctx, req.WalletAddress, req.PurchaseTxHash)
	if err != nil {
		return nil, err
	}
	return &types.RestoreResponse{
		WalletAddress:  game.NormalizeWallet(req.WalletAddress),
		PurchaseTxHash: req.PurchaseTxHash,
		Players:        players,
	}, nil
}
