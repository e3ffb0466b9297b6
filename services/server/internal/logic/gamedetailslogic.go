package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/cuihairu/bonfire/services/server/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

const detailsEventLimit = 50

type GameDetailsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGameDetailsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GameDetailsLogic {
	return &GameDetailsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GameDetails returns a full game with its ledgers. A game_id selects any
// game, falling back to the archive export once it is no longer in memory;
// otherwise the bonfire's active game is returned.
func (l *GameDetailsLogic) GameDetails(req *types.DetailsQuery) (*types.DetailsResponse, error) {
	eng := l.svcCtx.Engine
	gameID := strings.TrimSpace(req.GameId)
	if gameID == "" && strings.TrimSpace(req.BonfireId) == "" {
		return nil, fmt.Errorf("%w: bonfire_id or game_id is required", game.ErrInvalidArgument)
	}

	if gameID != "" {
		snap, err := eng.Details(l.ctx, gameID)
		if errors.Is(err, game.ErrNotFound) && l.svcCtx.Exporter != nil {
			snap, err = l.svcCtx.Exporter.Find(l.ctx, gameID)
			if err != nil {
				return nil, err
			}
			return &types.DetailsResponse{Game: snap, Events: []game.Event{}, Archived: true}, nil
		}
		if err != nil {
			return nil, err
		}
		return &types.DetailsResponse{
			Game:     snap,
			Events:   eng.Feed(l.ctx, snap.BonfireID, detailsEventLimit),
			Archived: snap.Status == game.StatusArchived,
		}, nil
	}

	snap, err := eng.State(l.ctx, req.BonfireId)
	if err != nil {
		return nil, err
	}
	return &types.DetailsResponse{
		Game:    snap,
		Events:  eng.Feed(l.ctx, snap.BonfireID, detailsEventLimit),
		History: eng.History(l.ctx, snap.BonfireID),
	}, nil
}
