package handler

import (
	"net/http"

	"github.com/cuihairu/bonfire/internal/telemetry"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/healthz",
				Handler: HealthzHandler(serverCtx),
			},
		},
	)

	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{serverCtx.RoleCheck},
			traced(GameRoutes(serverCtx))...,
		),
	)

	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{serverCtx.RoleCheck},
			rest.Route{
				Method:  http.MethodGet,
				Path:    "/game/feed/ws",
				Handler: FeedStreamHandler(serverCtx),
			},
		),
	)
}

// GameRoutes lists every JSON route under /game.
func GameRoutes(serverCtx *svc.ServiceContext) []rest.Route {
	return []rest.Route{
		{
			Method:  http.MethodGet,
			Path:    "/game/config",
			Handler: GameConfigHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/create",
			Handler: CreateGameHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/agents/register-purchase",
			Handler: RegisterPurchaseHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/turn",
			Handler: TurnHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/agents/complete",
			Handler: CompleteHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/agents/process-stack",
			Handler: ProcessStackHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/stack/process-all",
			Handler: ProcessAllHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/game/stack/timer/status",
			Handler: TimerStatusHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/agents/gm-react",
			Handler: GMReactHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/world/generate-episode",
			Handler: WorldEpisodeHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/quests/create",
			Handler: CreateQuestHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/quests/claim",
			Handler: ClaimQuestHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/agents/recharge",
			Handler: RechargeHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/player/restore",
			Handler: RestoreHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/purchased-agents/reveal-nonce",
			Handler: RevealNonceHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/purchased-agents/reveal-api-key",
			Handler: RevealApiKeyHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/game/state",
			Handler: GameStateHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/game/feed",
			Handler: GameFeedHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/game/details",
			Handler: GameDetailsHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/game/list-active",
			Handler: ListActiveHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/game/map",
			Handler: RoomMapHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/map/init",
			Handler: InitMapHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/game/room/chat",
			Handler: RoomChatHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/game/room/npcs",
			Handler: RoomNpcsHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/room/move",
			Handler: MoveRoomHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/room/create",
			Handler: CreateRoomHandler(serverCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/game/inventory",
			Handler: InventoryHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/inventory/use",
			Handler: UseObjectHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/npc/create",
			Handler: CreateNpcHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/npc/interact",
			Handler: NpcInteractHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/object/create",
			Handler: CreateObjectHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/object/grant",
			Handler: GrantObjectHandler(serverCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/game/agents/end-turn",
			Handler: EndTurnHandler(serverCtx),
		},
	}
}

func traced(routes []rest.Route) []rest.Route {
	for i := range routes {
		routes[i].Handler = telemetry.Middleware(routes[i].Path)(routes[i].Handler)
	}
	return routes
}
