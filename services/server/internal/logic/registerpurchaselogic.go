package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/internal/onchain"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type RegisterPurchaseLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRegisterPurchaseLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RegisterPurchaseLogic {
	return &RegisterPurchaseLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// RegisterPurchase verifies the payment header and the purchase record, then
// registers the agent in the bonfire's active game. The payment is only
// consumed when the agent is registered.
func (l *RegisterPurchaseLogic) RegisterPurchase(req *types.RegisterPurchaseRequest) (resp *types.RegisterPurchaseResponse, err error) {
	if req.EpisodesPurchased < 0 {
		return nil, fmt.Errorf("%w: episodes_purchased must be >= 0", game.ErrInvalidArgument)
	}
	var receipt *onchain.Receipt
	header := strings.TrimSpace(req.Payment)
	switch {
	case header != "":
		r, verr := l.svcCtx.Payments.Verify(l.ctx, header, req.PaymentAmount)
		if verr != nil {
			return nil, verr
		}
		defer func() {
			if err != nil {
				l.svcCtx.Payments.Release(r.Fingerprint)
			}
		}()
		if !strings.EqualFold(r.Payer, req.WalletAddress) {
			return nil, fmt.Errorf("%w: payer does not match wallet_address", game.ErrPaymentInvalid)
		}
		receipt = &r
	case l.svcCtx.Config.Payment.Required:
		return nil, fmt.Errorf("%w: %s header is required", game.ErrPaymentInvalid, onchain.PaymentHeader)
	}

	if pid := strings.TrimSpace(req.PurchaseId); pid != "" && l.svcCtx.Config.Reveal.VerifyPurchases {
		ok, err := l.svcCtx.Reveal.VerifyPurchase(l.ctx, pid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: invalid_purchase_id", game.ErrInvalidArgument)
		}
	}

	agent, err := l.svcCtx.Engine.RegisterAgent(l.ctx, game.RegisterParams{
		BonfireID:      req.BonfireId,
		AgentID:        req.AgentId,
		PurchaseID:     req.PurchaseId,
		PurchaseTxHash: req.PurchaseTxHash,
		OwnerWallet:    req.WalletAddress,
		Quota:          req.EpisodesPurchased,
	})
	if err != nil {
		return nil, err
	}
	return &types.RegisterPurchaseResponse{
		AgentId:           agent.AgentID,
		BonfireId:         agent.BonfireID,
		GameId:            agent.GameID,
		OwnerWallet:       agent.OwnerWallet,
		RemainingEpisodes: agent.Quota.Remaining,
		Payment:           receipt,
	}, nil
}
