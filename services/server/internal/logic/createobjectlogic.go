package logic

import (
	"context"

	"github.com/cuihairu/bonfire/internal/game"

	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type CreateObjectLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateObjectLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateObjectLogic {
	return &CreateObjectLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CreateObjectLogic) CreateObject(req *types.CreateObjectRequest) (*game.Object, error) {
	obj, err := l.svcCtx.Engine.CreateObject(l.ctx, req.BonfireId, req.WalletAddress, game.ObjectDraft{
		Name:         req.Name,
		Description:  req.Description,
		Type:         req.ObjType,
		Properties:   req.Properties,
		LocationType: game.LocationType(req.LocationType),
		LocationID:   req.LocationId,
	})
	if err != nil {
		return nil, err
	}
	return &obj, nil
}
