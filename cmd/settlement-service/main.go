package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/radieske/prediction-ledger/internal/settlement-service/cache"
	httpapi "github.com/radieske/prediction-ledger/internal/settlement-service/http"
	"github.com/radieske/prediction-ledger/internal/settlement-service/outbox"
	"github.com/radieske/prediction-ledger/internal/settlement-service/publisher"
	"github.com/radieske/prediction-ledger/internal/settlement-service/pubsub"
	"github.com/radieske/prediction-ledger/internal/settlement-service/storage"
	"github.com/radieske/prediction-ledger/internal/settlement-service/ws"
	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/engine"
	"github.com/radieske/prediction-ledger/internal/settlement/journal"
	sharedcache "github.com/radieske/prediction-ledger/internal/shared/cache"
	"github.com/radieske/prediction-ledger/internal/shared/config"
	"github.com/radieske/prediction-ledger/internal/shared/kafka"
	"github.com/radieske/prediction-ledger/internal/shared/logger"
	"github.com/radieske/prediction-ledger/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting service", zap.String("journal", cfg.JournalDriver))

	// journal durável
	store, closeStore, err := storage.OpenJournal(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open journal", zap.Error(err))
	}
	defer closeStore()

	// Métricas Prometheus do engine e do flusher
	m := metrics.NewLedger(prometheus.DefaultRegisterer)

	// reconstrói o estado a partir do journal
	ob := journal.NewOutbox()
	start := time.Now()
	eng, err := engine.Restore(ctx, store,
		engine.WithRecorder(ob),
		engine.WithObserver(m.Observe),
		engine.WithMigrations(engine.Builtin...),
	)
	if err != nil {
		log.Fatal("journal replay failed", zap.Error(err))
	}
	seq, _ := eng.Seq()
	log.Info("ledger restored", zap.Uint64("seq", seq), zap.Duration("took", time.Since(start)))

	if mm, err := eng.Reconcile(); err != nil || len(mm) > 0 {
		log.Fatal("ledger failed reconciliation after replay", zap.Int("mismatches", len(mm)), zap.Error(err))
	}

	// sinks best-effort: Redis (cache + pubsub) e Kafka
	var sinks []outbox.Sink
	var statsCache httpapi.StatsCache
	hub := ws.NewHub(func(r *http.Request) bool { return true })

	if cfg.RedisAddr != "" {
		redisClient, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		log.Info("redis connected")

		sc := cache.New(redisClient, cfg.StatsCacheTTL.Duration)
		statsCache = sc
		sinks = append(sinks, sc, &pubsub.MarketSink{
			Stats:   eng,
			Pub:     pubsub.NewRedisBroadcaster(redisClient),
			Channel: cfg.RedisPubSubChannel,
		})
		ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)
	}

	if cfg.KafkaBrokers != "" {
		ks := &publisher.KafkaSink{}
		for _, w := range []struct {
			topic string
			dst   *publisher.MessageWriter
		}{
			{cfg.TopicJournal, &ks.Journal},
			{cfg.TopicBetLocked, &ks.BetLocked},
			{cfg.TopicMarketResolved, &ks.MarketResolved},
		} {
			if w.topic == "" {
				continue
			}
			writer := kafka.NewWriter(cfg.KafkaBrokers, w.topic)
			defer writer.Close()
			*w.dst = writer
			log.Info("kafka writer ready", zap.String("topic", w.topic))
		}
		sinks = append(sinks, ks)
	}

	flusher := &outbox.Flusher{
		Log:       log.Named("flusher"),
		Outbox:    ob,
		Store:     store,
		Sinks:     sinks,
		Interval:  cfg.FlushInterval.Duration,
		OnFlushed: func(n int) { m.Flushed.Add(float64(n)) },
		OnError:   func(stage string) { m.Errors.WithLabelValues(stage).Inc() },
	}
	// contexto próprio: o flusher só para depois do drain do HTTP
	stopFlusher := flusher.Start()

	// servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, prometheus.DefaultGatherer, func(ctx context.Context) error {
		if eng.Poisoned() {
			return domain.ErrLedgerUnavailable
		}
		if _, err := store.LastSeq(ctx); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		if n := ob.Len(); n > 10000 {
			return fmt.Errorf("journal backlog of %d records", n)
		}
		return nil
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	opts := []httpapi.Option{httpapi.WithWebsocket(http.HandlerFunc(hub.HandleWS))}
	if statsCache != nil {
		opts = append(opts, httpapi.WithCache(statsCache))
	}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, httpapi.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))
	}
	api := httpapi.NewServer(log.Named("http"), eng, opts...)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", zap.Error(err))
	}
	_ = metricsSrv.Shutdown(shutdownCtx)

	// handlers drenados: nenhuma mutação nova, agora o flush final
	stopFlusher()
	log.Info("settlement-service stopped", zap.Int("unflushed", ob.Len()))
}
