package types

import (
	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/internal/onchain"
	"github.com/cuihairu/bonfire/internal/scheduler"
)

type (
	HealthzResponse struct {
		Status string           `json:"status"`
		Logs   map[string]int64 `json:"logs"`
		Uptime string           `json:"uptime"`
	}

	GameConfigResponse struct {
		RegistryAddress           string               `json:"erc8004_registry_address"`
		Payment                   onchain.Requirements `json:"payment"`
		PaymentDefaultAmount      string               `json:"payment_default_amount"`
		QuestClaimCooldownSeconds int                  `json:"quest_claim_cooldown_seconds"`
		StackIntervalSeconds      int                  `json:"stack_process_interval_seconds"`
		DefaultQuota              int                  `json:"default_quota"`
		DefaultRecharge           int                  `json:"default_recharge"`
		OwnershipMode             string               `json:"ownership_mode"`
	}

	CreateGameRequest struct {
		BonfireId         string `json:"bonfire_id"`
		WalletAddress     string `json:"wallet_address"`
		GamePrompt        string `json:"game_prompt"`
		GmAgentId         string `json:"gm_agent_id,optional"`
		InitialQuestCount int    `json:"initial_quest_count,optional"`
	}

	CreateGameResponse struct {
		GameId                string       `json:"game_id"`
		BonfireId             string       `json:"bonfire_id"`
		OwnerWallet           string       `json:"owner_wallet"`
		GamePrompt            string       `json:"game_prompt"`
		InitialEpisodeSummary string       `json:"initial_episode_summary"`
		InitialQuests         []game.Quest `json:"initial_quests"`
		Status                game.Status  `json:"status"`
		Warning               string       `json:"warning,omitempty"`
	}

	RegisterPurchaseRequest struct {
		BonfireId         string `json:"bonfire_id"`
		WalletAddress     string `json:"wallet_address"`
		AgentId           string `json:"agent_id"`
		PurchaseId        string `json:"purchase_id,optional"`
		PurchaseTxHash    string `json:"purchase_tx_hash,optional"`
		EpisodesPurchased int    `json:"episodes_purchased,optional"`
		PaymentAmount     string `json:"payment_amount,optional"`
		Payment           string `header:"X-Payment,optional"`
	}

	RegisterPurchaseResponse struct {
		AgentId           string           `json:"agent_id"`
		BonfireId         string           `json:"bonfire_id"`
		GameId            string           `json:"game_id"`
		OwnerWallet       string           `json:"owner_wallet"`
		RemainingEpisodes int              `json:"remaining_episodes"`
		Payment           *onchain.Receipt `json:"payment,omitempty"`
	}

	TurnRequest struct {
		BonfireId    string `json:"bonfire_id"`
		AgentId      string `json:"agent_id"`
		Action       string `json:"action,optional"`
		Message      string `json:"message,optional"`
		AsGameMaster bool   `json:"as_game_master,optional"`
	}

	CompleteRequest struct {
		BonfireId    string `json:"bonfire_id"`
		AgentId      string `json:"agent_id"`
		Message      string `json:"message"`
		AsGameMaster bool   `json:"as_game_master,optional"`
	}

	CompleteResponse struct {
		game.TurnResult
		Reply string `json:"reply"`
	}

	AgentRequest struct {
		BonfireId string `json:"bonfire_id"`
		AgentId   string `json:"agent_id"`
	}

	GMReactRequest struct {
		BonfireId string `json:"bonfire_id"`
		AgentId   string `json:"agent_id"`
		EpisodeId int64  `json:"episode_id,optional"`
	}

	WorldEpisodeRequest struct {
		BonfireId     string `json:"bonfire_id"`
		WalletAddress string `json:"wallet_address"`
		Content       string `json:"content"`
	}

	CreateQuestRequest struct {
		BonfireId     string `json:"bonfire_id"`
		WalletAddress string `json:"wallet_address"`
		Prompt        string `json:"prompt"`
		Keyword       string `json:"keyword,optional"`
		Reward        int    `json:"reward,optional"`
	}

	ClaimQuestRequest struct {
		BonfireId     string `json:"bonfire_id"`
		QuestId       string `json:"quest_id"`
		WalletAddress string `json:"wallet_address"`
		AgentId       string `json:"agent_id,optional"`
	}

	RechargeRequest struct {
		BonfireId     string `json:"bonfire_id"`
		WalletAddress string `json:"wallet_address"`
		AgentId       string `json:"agent_id"`
		Amount        int    `json:"amount"`
	}

	RechargeResponse struct {
		AgentId        string `json:"agent_id"`
		Amount         int    `json:"amount"`
		QuotaRemaining int    `json:"quota_remaining"`
	}

	RestoreRequest struct {
		WalletAddress  string `json:"wallet_address"`
		PurchaseTxHash string `json:"purchase_tx_hash,optional"`
	}

	RestoreResponse struct {
		WalletAddress  string            `json:"wallet_address"`
		PurchaseTxHash string            `json:"purchase_tx_hash,omitempty"`
		Players        []game.AgentState `json:"players"`
	}

	RevealNonceRequest struct {
		PurchaseId string `json:"purchase_id"`
	}

	RevealApiKeyRequest struct {
		PurchaseId string `json:"purchase_id"`
		Nonce      string `json:"nonce"`
		Signature  string `json:"signature"`
	}

	BonfireQuery struct {
		BonfireId string `form:"bonfire_id"`
	}

	FeedQuery struct {
		BonfireId string `form:"bonfire_id"`
		Limit     int    `form:"limit,default=20,range=[1:200]"`
	}

	FeedResponse struct {
		BonfireId string       `json:"bonfire_id"`
		Events    []game.Event `json:"events"`
	}

	DetailsQuery struct {
		BonfireId string `form:"bonfire_id,optional"`
		GameId    string `form:"game_id,optional"`
	}

	DetailsResponse struct {
		Game     game.Snapshot  `json:"game"`
		Events   []game.Event   `json:"events"`
		History  []game.Summary `json:"history,omitempty"`
		Archived bool           `json:"archived"`
	}

	ListActiveResponse struct {
		Games []game.Summary `json:"games"`
	}

	TimerStatusResponse struct {
		scheduler.Status
		FeedDropped uint64 `json:"feed_dropped"`
		FeedFailed  uint64 `json:"feed_failed"`
	}

	RoomQuery struct {
		BonfireId string `form:"bonfire_id"`
		RoomId    string `form:"room_id"`
		Limit     int    `form:"limit,default=50,range=[1:200]"`
	}

	AgentQuery struct {
		BonfireId string `form:"bonfire_id"`
		AgentId   string `form:"agent_id"`
	}

	BonfireRequest struct {
		BonfireId string `json:"bonfire_id"`
	}

	RoomChatResponse struct {
		RoomId   string             `json:"room_id"`
		Messages []game.RoomMessage `json:"messages"`
	}

	RoomNpcsResponse struct {
		RoomId string     `json:"room_id"`
		Npcs   []game.NPC `json:"npcs"`
	}

	InventoryResponse struct {
		AgentId string        `json:"agent_id"`
		Items   []game.Object `json:"items"`
	}

	MoveRoomRequest struct {
		BonfireId string `json:"bonfire_id"`
		AgentId   string `json:"agent_id"`
		RoomId    string `json:"room_id"`
	}

	MoveRoomResponse struct {
		AgentId string    `json:"agent_id"`
		Room    game.Room `json:"room"`
	}

	UseObjectRequest struct {
		BonfireId string `json:"bonfire_id"`
		AgentId   string `json:"agent_id"`
		ObjectId  string `json:"object_id"`
	}

	NpcInteractRequest struct {
		BonfireId string `json:"bonfire_id"`
		AgentId   string `json:"agent_id"`
		NpcId     string `json:"npc_id"`
		Message   string `json:"message"`
	}

	NpcInteractResponse struct {
		NpcId   string `json:"npc_id"`
		NpcName string `json:"npc_name"`
		RoomId  string `json:"room_id"`
		Reply   string `json:"reply"`
	}

	EndTurnResponse struct {
		game.StackResult
		Map game.RoomMap `json:"map"`
	}

	CreateRoomRequest struct {
		BonfireId     string   `json:"bonfire_id"`
		WalletAddress string   `json:"wallet_address"`
		Name          string   `json:"name"`
		Description   string   `json:"description,optional"`
		Connections   []string `json:"connections,optional"`
	}

	CreateNpcRequest struct {
		BonfireId     string `json:"bonfire_id"`
		WalletAddress string `json:"wallet_address"`
		Name          string `json:"name"`
		RoomId        string `json:"room_id"`
		Personality   string `json:"personality,optional"`
		Description   string `json:"description,optional"`
		DialogueStyle string `json:"dialogue_style,optional"`
	}

	CreateObjectRequest struct {
		BonfireId     string            `json:"bonfire_id"`
		WalletAddress string            `json:"wallet_address"`
		Name          string            `json:"name"`
		Description   string            `json:"description,optional"`
		ObjType       string            `json:"obj_type,optional"`
		Properties    map[string]string `json:"properties,optional"`
		LocationType  string            `json:"location_type,optional"`
		LocationId    string            `json:"location_id,optional"`
	}

	GrantObjectRequest struct {
		BonfireId     string `json:"bonfire_id"`
		WalletAddress string `json:"wallet_address"`
		ObjectId      string `json:"object_id"`
		AgentId       string `json:"agent_id"`
	}
)
