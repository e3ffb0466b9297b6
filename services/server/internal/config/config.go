// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package config

import (
	"time"

	"github.com/zeromicro/go-zero/rest"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/internal/objstore"
	"github.com/cuihairu/bonfire/internal/telemetry"
)

type Config struct {
	rest.RestConf
	Game       GameConfig       `json:"game,optional" yaml:"game"`
	Scheduler  SchedulerConfig  `json:"scheduler,optional" yaml:"scheduler"`
	GM         GMConfig         `json:"gm,optional" yaml:"gm"`
	Completion CompletionConfig `json:"completion,optional" yaml:"completion"`
	Payment    PaymentConfig    `json:"payment,optional" yaml:"payment"`
	Ownership  OwnershipConfig  `json:"ownership,optional" yaml:"ownership"`
	Reveal     RevealConfig     `json:"reveal,optional" yaml:"reveal"`
	Feed       FeedConfig       `json:"feed,optional" yaml:"feed"`
	Archive    ArchiveConfig    `json:"archive,optional" yaml:"archive"`
	Audit      AuditConfig      `json:"audit,optional" yaml:"audit"`
	RBAC       RBACConfig       `json:"rbac,optional" yaml:"rbac"`
	Telemetry  telemetry.Config `json:"telemetry,optional" yaml:"telemetry"`
}

type GameConfig struct {
	DefaultQuota              int    `json:"default_quota,default=5" yaml:"default_quota"`
	DefaultRecharge           int    `json:"default_recharge,default=1" yaml:"default_recharge"`
	QuestReward               int    `json:"quest_reward,default=1" yaml:"quest_reward"`
	InitialQuestCount         int    `json:"initial_quest_count,default=2" yaml:"initial_quest_count"`
	QuestClaimCooldownSeconds int    `json:"quest_claim_cooldown_seconds,default=60" yaml:"quest_claim_cooldown_seconds"`
	FeedCapacity              int    `json:"feed_capacity,default=500" yaml:"feed_capacity"`
	CatalogPath               string `json:"catalog_path,optional" yaml:"catalog_path"`
	// TuningFile is watched and re-applied on change.
	TuningFile string `json:"tuning_file,optional" yaml:"tuning_file"`
}

type SchedulerConfig struct {
	Enabled                     bool `json:"enabled,default=true" yaml:"enabled"`
	StackProcessIntervalSeconds int  `json:"stack_process_interval_seconds,default=120" yaml:"stack_process_interval_seconds"`
	HistorySize                 int  `json:"history_size,default=20" yaml:"history_size"`
	RunTimeoutSeconds           int  `json:"run_timeout_seconds,optional" yaml:"run_timeout_seconds"`
}

type GMConfig struct {
	TimeoutSeconds int `json:"timeout_seconds,default=20" yaml:"timeout_seconds"`
	MaxExtension   int `json:"max_extension,default=3" yaml:"max_extension"`
}

type CompletionConfig struct {
	BaseURL        string `json:"base_url,optional" yaml:"base_url"`
	APIKey         string `json:"api_key,optional" yaml:"api_key"`
	Model          string `json:"model,default=gpt-4o-mini" yaml:"model"`
	TimeoutSeconds int    `json:"timeout_seconds,default=30" yaml:"timeout_seconds"`
}

type PaymentConfig struct {
	// Required makes register-purchase reject requests without X-PAYMENT.
	Required       bool   `json:"required,optional" yaml:"required"`
	Network        string `json:"network,default=base" yaml:"network"`
	ChainID        int64  `json:"chain_id,default=8453" yaml:"chain_id"`
	TokenAddress   string `json:"token_address,default=0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913" yaml:"token_address"`
	PayTo          string `json:"pay_to,optional" yaml:"pay_to"`
	DefaultAmount  string `json:"default_amount,default=0.01" yaml:"default_amount"`
	Decimals       int    `json:"decimals,default=6" yaml:"decimals"`
	FacilitatorURL string `json:"facilitator_url,optional" yaml:"facilitator_url"`
}

type OwnershipConfig struct {
	Mode            string `json:"mode,default=first-claim,options=first-claim|registry" yaml:"mode"`
	RegistryURL     string `json:"registry_url,optional" yaml:"registry_url"`
	RegistryAPIKey  string `json:"registry_api_key,optional" yaml:"registry_api_key"`
	RegistryAddress string `json:"registry_address,optional" yaml:"registry_address"`
}

type RevealConfig struct {
	BaseURL string `json:"base_url,default=http://localhost:8000" yaml:"base_url"`
	APIKey  string `json:"api_key,optional" yaml:"api_key"`
	// VerifyPurchases checks purchase ids with the reveal service on
	// registration.
	VerifyPurchases bool `json:"verify_purchases,optional" yaml:"verify_purchases"`
}

type FeedConfig struct {
	Queue        string   `json:"queue,default=noop,options=noop|redis|kafka" yaml:"queue"`
	RedisURL     string   `json:"redis_url,optional" yaml:"redis_url"`
	Stream       string   `json:"stream,optional" yaml:"stream"`
	MaxLen       int64    `json:"max_len,optional" yaml:"max_len"`
	MaxLenApprox bool     `json:"max_len_approx,default=true" yaml:"max_len_approx"`
	KafkaBrokers []string `json:"kafka_brokers,optional" yaml:"kafka_brokers"`
	Topic        string   `json:"topic,optional" yaml:"topic"`
	Backlog      int      `json:"backlog,optional" yaml:"backlog"`
	WebSocket    bool     `json:"websocket,default=true" yaml:"websocket"`
}

type ArchiveConfig struct {
	Enabled bool            `json:"enabled,optional" yaml:"enabled"`
	DSN     string          `json:"dsn,optional" yaml:"dsn"`
	Store   objstore.Config `json:"store,optional" yaml:"store"`
}

type AuditConfig struct {
	Path string `json:"path,optional" yaml:"path"`
}

type RBACConfig struct {
	PolicyFile string `json:"policy_file,optional" yaml:"policy_file"`
}

// Tuning converts the game section into engine tuning. Zero values fall
// back to the engine defaults.
func (c GameConfig) Tuning() game.Tuning {
	t := game.DefaultTuning()
	if c.DefaultQuota > 0 {
		t.DefaultQuota = c.DefaultQuota
	}
	if c.DefaultRecharge > 0 {
		t.DefaultRecharge = c.DefaultRecharge
	}
	if c.QuestReward > 0 {
		t.QuestReward = c.QuestReward
	}
	if c.InitialQuestCount > 0 {
		t.InitialQuestCount = c.InitialQuestCount
	}
	if c.QuestClaimCooldownSeconds > 0 {
		t.QuestClaimCooldown = time.Duration(c.QuestClaimCooldownSeconds) * time.Second
	}
	return t
}

func (c SchedulerConfig) Interval() time.Duration {
	return time.Duration(c.StackProcessIntervalSeconds) * time.Second
}

func (c GMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return game.DefaultGMTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
