// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package svc

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/cuihairu/bonfire/internal/archive"
	"github.com/cuihairu/bonfire/internal/audit/chain"
	"github.com/cuihairu/bonfire/internal/auth/rbac"
	"github.com/cuihairu/bonfire/internal/catalog"
	"github.com/cuihairu/bonfire/internal/completion"
	"github.com/cuihairu/bonfire/internal/db"
	"github.com/cuihairu/bonfire/internal/feed"
	"github.com/cuihairu/bonfire/internal/feed/mq"
	"github.com/cuihairu/bonfire/internal/feed/ws"
	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/internal/gm"
	"github.com/cuihairu/bonfire/internal/hotreload"
	"github.com/cuihairu/bonfire/internal/objstore"
	"github.com/cuihairu/bonfire/internal/onchain"
	archiverepo "github.com/cuihairu/bonfire/internal/repo/gorm/archive"
	"github.com/cuihairu/bonfire/internal/scheduler"
	"github.com/cuihairu/bonfire/internal/telemetry"
	"github.com/cuihairu/bonfire/services/server/internal/config"
	"github.com/cuihairu/bonfire/services/server/internal/middleware"
)

type ServiceContext struct {
	Config config.Config

	Engine    *game.Engine
	Scheduler *scheduler.Scheduler
	Publisher *feed.Publisher
	Hub       *ws.Hub
	Exporter  *archive.Exporter
	Audit     *chain.Writer
	// Completer is nil when no completion service is configured.
	Completer completion.Completer
	Ownership onchain.OwnershipVerifier
	Payments  *onchain.PaymentVerifier
	Reveal    *onchain.RevealClient
	Enforcer  *rbac.Enforcer
	Telemetry *telemetry.Provider
	Tuning    *hotreload.Watcher

	RoleCheck func(http.HandlerFunc) http.HandlerFunc

	StartedAt time.Time
	cancel    context.CancelFunc
}

func NewServiceContext(c config.Config) *ServiceContext {
	ctx := &ServiceContext{Config: c, StartedAt: time.Now()}
	log := slog.Default()

	tp, err := telemetry.NewProvider(context.Background(), c.Telemetry)
	if err != nil {
		logx.Errorf("init telemetry: %v", err)
	} else {
		ctx.Telemetry = tp
	}

	if key := strings.TrimSpace(c.Completion.APIKey); key != "" {
		cl, err := completion.New(completion.Config{
			BaseURL: c.Completion.BaseURL,
			APIKey:  key,
			Model:   c.Completion.Model,
			Timeout: time.Duration(c.Completion.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			logx.Errorf("init completion client, game master falls back to rules: %v", err)
		} else {
			ctx.Completer = cl
		}
	}

	cat := catalog.Default()
	if p := strings.TrimSpace(c.Game.CatalogPath); p != "" {
		if loaded, err := catalog.Load(p); err != nil {
			logx.Errorf("load quest catalog %s: %v", p, err)
		} else {
			cat = loaded
		}
	}
	master := gm.New(ctx.Completer, gm.WithCatalog(cat), gm.WithMaxExtension(c.GM.MaxExtension), gm.WithLogger(log))

	queue, err := mq.New(mq.Config{
		Type:         c.Feed.Queue,
		RedisURL:     c.Feed.RedisURL,
		Stream:       c.Feed.Stream,
		MaxLen:       c.Feed.MaxLen,
		MaxLenApprox: c.Feed.MaxLenApprox,
		KafkaBrokers: c.Feed.KafkaBrokers,
		Topic:        c.Feed.Topic,
	})
	if err != nil {
		logx.Errorf("init feed queue, events stay local: %v", err)
		queue = mq.NewNoop()
	}
	popts := []feed.Option{feed.WithBacklog(c.Feed.Backlog)}
	if c.Feed.WebSocket {
		ctx.Hub = ws.NewHub()
		popts = append(popts, feed.WithSink(ctx.Hub))
	}
	if p := strings.TrimSpace(c.Audit.Path); p != "" {
		if w, err := chain.NewWriter(p); err != nil {
			logx.Errorf("open audit log %s: %v", p, err)
		} else {
			ctx.Audit = w
			popts = append(popts, feed.WithSink(w))
		}
	}
	ctx.Publisher = feed.NewPublisher(queue, popts...)

	if c.Archive.Enabled {
		ctx.Exporter = newExporter(c.Archive)
	}

	store := game.NewStore(game.WithFeedCapacity(c.Game.FeedCapacity))
	opts := []game.Option{
		game.WithDecider(master),
		game.WithSeeder(master),
		game.WithSink(ctx.Publisher),
		game.WithLogger(log),
		game.WithTuning(c.Game.Tuning()),
		game.WithGMTimeout(c.GM.Timeout()),
	}
	if ctx.Exporter != nil {
		opts = append(opts, game.WithArchiver(ctx.Exporter))
	}
	if ctx.Telemetry != nil && ctx.Telemetry.Metrics != nil {
		opts = append(opts, game.WithMetrics(ctx.Telemetry.Metrics))
	}
	ctx.Engine = game.NewEngine(store, opts...)

	var runTimeout time.Duration
	if c.Scheduler.RunTimeoutSeconds > 0 {
		runTimeout = time.Duration(c.Scheduler.RunTimeoutSeconds) * time.Second
	}
	ctx.Scheduler = scheduler.New(ctx.Engine.ProcessAll, scheduler.Config{
		Enabled:     c.Scheduler.Enabled,
		Interval:    c.Scheduler.Interval(),
		HistorySize: c.Scheduler.HistorySize,
		RunTimeout:  runTimeout,
	}, log)

	if c.Ownership.Mode == "registry" {
		ctx.Ownership = onchain.NewRegistryVerifier(onchain.RegistryConfig{
			BaseURL:         c.Ownership.RegistryURL,
			APIKey:          c.Ownership.RegistryAPIKey,
			RegistryAddress: c.Ownership.RegistryAddress,
		})
	} else {
		ctx.Ownership = onchain.NewFirstClaimVerifier()
	}
	ctx.Payments = onchain.NewPaymentVerifier(onchain.PaymentConfig{
		Network:        c.Payment.Network,
		ChainID:        c.Payment.ChainID,
		TokenAddress:   c.Payment.TokenAddress,
		PayTo:          c.Payment.PayTo,
		DefaultAmount:  c.Payment.DefaultAmount,
		Decimals:       c.Payment.Decimals,
		FacilitatorURL: c.Payment.FacilitatorURL,
	})
	ctx.Reveal = onchain.NewRevealClient(onchain.RevealConfig{BaseURL: c.Reveal.BaseURL, APIKey: c.Reveal.APIKey})

	enf, err := rbac.NewEnforcer(c.RBAC.PolicyFile)
	if err != nil {
		logx.Errorf("load rbac policy %s, using built-in rules: %v", c.RBAC.PolicyFile, err)
		enf, err = rbac.NewEnforcer("")
		logx.Must(err)
	}
	ctx.Enforcer = enf
	ctx.RoleCheck = middleware.NewRoleMiddleware(enf, ctx.Ownership).Handle

	if p := strings.TrimSpace(c.Game.TuningFile); p != "" {
		w, err := hotreload.NewWatcher(p, ctx.Engine, 500*time.Millisecond, log)
		if err != nil {
			logx.Errorf("tuning watcher: %v", err)
		} else {
			ctx.Tuning = w
		}
	}
	return ctx
}

func newExporter(c config.ArchiveConfig) *archive.Exporter {
	st, err := objstore.Open(context.Background(), c.Store)
	if err != nil {
		logx.Errorf("open archive store (%s): %v", c.Store.Driver, err)
		return nil
	}
	var repo *archiverepo.Repo
	if gdb, err := db.Open(c.DSN); err != nil {
		logx.Errorf("open archive index (%s): %v", db.Driver(c.DSN), err)
	} else if err := archiverepo.AutoMigrate(gdb); err != nil {
		logx.Errorf("migrate archive index: %v", err)
	} else {
		repo = archiverepo.NewRepo(gdb)
	}
	x, err := archive.NewExporter(st, repo)
	if err != nil {
		logx.Errorf("init archive exporter: %v", err)
		return nil
	}
	return x
}

// Start launches the background parts: sweep timer and tuning watcher.
func (s *ServiceContext) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.Scheduler.Start(ctx)
	if s.Tuning != nil {
		if err := s.Tuning.Start(ctx); err != nil {
			logx.Errorf("start tuning watcher: %v", err)
		}
	}
}

// Stop halts background work and flushes the sinks.
func (s *ServiceContext) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.Scheduler.Stop()
	if s.Tuning != nil {
		_ = s.Tuning.Stop()
	}
	if err := s.Publisher.Close(); err != nil {
		logx.Errorf("close feed publisher: %v", err)
	}
	if s.Audit != nil {
		_ = s.Audit.Close()
	}
	if s.Exporter != nil {
		s.Exporter.Close()
	}
	if s.Telemetry != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Telemetry.Shutdown(sctx); err != nil {
			logx.Errorf("telemetry shutdown: %v", err)
		}
	}
}
