package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adjudicator/internal/adjudication"
	claimshandler "adjudicator/internal/claims/handler"
	claimsmetrics "adjudicator/internal/claims/metrics"
	"adjudicator/internal/claims/service"
	memorystore "adjudicator/internal/claims/store/memory"
	pgstore "adjudicator/internal/claims/store/postgres"
	redisstore "adjudicator/internal/claims/store/redis"
	"adjudicator/internal/platform/config"
	"adjudicator/internal/platform/httpserver"
	"adjudicator/internal/platform/logger"
	platformmetrics "adjudicator/internal/platform/metrics"
	"adjudicator/internal/platform/middleware"
	platformredis "adjudicator/internal/platform/redis"
	"adjudicator/pkg/platform/audit"
	auditkafka "adjudicator/pkg/platform/audit/kafka"
	"adjudicator/pkg/platform/audit/publishers/compliance"
	auditmemory "adjudicator/pkg/platform/audit/store/memory"
	auditpostgres "adjudicator/pkg/platform/audit/store/postgres"
	"adjudicator/pkg/platform/httputil"
	"adjudicator/pkg/platform/middleware/metadata"
	"adjudicator/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type stores struct {
	members service.MemberStore
	claims  service.ClaimStore
	history service.HistoryStore
	leads   service.LeadStore
	tx      service.TxRunner
	audit   audit.Store
	closers []func() error
}

func (s *stores) close(log *slog.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn("failed to close resource", "error", err)
		}
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return err
	}
	engine, err := adjudication.NewEngine(policy)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(log)

	publisherOpts := []compliance.Option{
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	}
	if len(cfg.KafkaBrokers) > 0 {
		mirror, err := auditkafka.New(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return fmt.Errorf("connect audit mirror: %w", err)
		}
		st.closers = append(st.closers, mirror.Close)
		publisherOpts = append(publisherOpts, compliance.WithMirror(mirror))
		log.Info("audit mirror enabled", "topic", cfg.AuditTopic, "brokers", len(cfg.KafkaBrokers))
	}

	svc, err := service.New(engine, st.members, st.claims, st.history,
		service.WithLogger(log),
		service.WithAuditPublisher(compliance.New(st.audit, publisherOpts...)),
		service.WithMetrics(claimsmetrics.New()),
		service.WithLeadStore(st.leads),
		service.WithTxRunner(st.tx),
		service.WithFetchTimeout(cfg.FetchTimeout),
		service.WithHistoryWindow(cfg.HistoryWindow),
	)
	if err != nil {
		return fmt.Errorf("build claims service: %w", err)
	}

	router := chi.NewRouter()
	router.Use(metadata.RequestMetadata)
	router.Use(requesttime.Middleware)
	router.Use(platformmetrics.New(prometheus.DefaultRegisterer).Middleware)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIToken(cfg.APIToken, log))
		claimshandler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting adjudicator", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildStores picks Postgres when DATABASE_URL is set and in-memory stores
// otherwise. Redis, when configured, takes over the claim history.
func buildStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	st := &stores{}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		st.closers = append(st.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			st.close(log)
			return nil, fmt.Errorf("ping database: %w", err)
		}
		if err := pgstore.Migrate(ctx, db); err != nil {
			st.close(log)
			return nil, err
		}
		st.members = pgstore.NewMemberStore(db)
		st.claims = pgstore.NewClaimStore(db)
		st.history = pgstore.NewHistoryStore(db)
		st.leads = pgstore.NewLeadStore(db)
		st.tx = pgstore.NewTxRunner(db)
		st.audit = auditpostgres.New(db)
		log.Info("using postgres stores")
	} else {
		members := memorystore.NewMemberStore()
		if cfg.SeedDemoMembers {
			memorystore.SeedDemoMembers(members)
		}
		st.members = members
		st.claims = memorystore.NewClaimStore()
		st.history = memorystore.NewHistoryStore()
		st.leads = memorystore.NewLeadStore()
		st.audit = auditmemory.NewInMemoryStore()
		log.Info("using in-memory stores", "seeded", cfg.SeedDemoMembers)
	}

	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		st.close(log)
		return nil, err
	}
	if client != nil {
		st.closers = append(st.closers, client.Close)
		st.history = redisstore.NewHistoryStore(client.Client, redisstore.WithRetention(cfg.HistoryWindow*4))
		log.Info("using redis claim history")
	}
	return st, nil
}
