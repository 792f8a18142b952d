package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tetraeducacao/leadtracker/internal/config"
	"github.com/tetraeducacao/leadtracker/internal/infra/cache"
	"github.com/tetraeducacao/leadtracker/internal/infra/database"
	"github.com/tetraeducacao/leadtracker/internal/infra/http/handlers"
	"github.com/tetraeducacao/leadtracker/internal/infra/http/middleware"
	"github.com/tetraeducacao/leadtracker/internal/infra/http/router"
	"github.com/tetraeducacao/leadtracker/internal/infra/integration/jornada"
	"github.com/tetraeducacao/leadtracker/internal/infra/queue"
	"github.com/tetraeducacao/leadtracker/internal/infra/worker"
	"github.com/tetraeducacao/leadtracker/internal/logger"
	"github.com/tetraeducacao/leadtracker/internal/usecase"
	"github.com/tetraeducacao/leadtracker/internal/view"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("❌ Configuração inválida")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Histórico de consultas (opcional): Postgres e, se houver, RabbitMQ na frente
	var (
		db           *sql.DB
		searchLogs   *database.SearchLogRepository
		recorder     usecase.SearchLogRecorder
		rabbitPinger handlers.Pinger
		historyRepo  handlers.SearchLogLister
	)

	if cfg.Database.URL != "" {
		db, err = database.NewDBConnection(ctx, cfg.Database.URL, database.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			log.WithError(err).Fatal("❌ Falha ao conectar no Postgres")
		}
		defer db.Close()

		searchLogs = database.NewSearchLogRepository(db)
		if err := searchLogs.EnsureSchema(ctx); err != nil {
			log.WithError(err).Fatal("❌ Falha ao preparar tabela do histórico")
		}
		historyRepo = searchLogs
		recorder = usecase.RecorderFunc(searchLogs.Create)

		retention := worker.NewRetentionWorker(searchLogs, time.Duration(cfg.Retention.Days)*24*time.Hour, cfg.Retention.Interval, log)
		go retention.Start(ctx)
	} else {
		log.Warn("⚠️ DATABASE_URL não definido: histórico de consultas desligado")
	}

	if cfg.RabbitMQ.URL != "" && searchLogs != nil {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.WithError(err).Fatal("❌ Falha ao conectar no RabbitMQ")
		}
		defer rabbitMQ.Close()
		rabbitPinger = rabbitMQ

		publishCh, err := rabbitMQ.Conn.Channel()
		if err != nil {
			log.WithError(err).Fatal("❌ Falha ao abrir canal de publicação")
		}
		recorder = queue.NewSearchLogProducer(publishCh)

		consumer := queue.NewSearchLogWorker(rabbitMQ.Ch, searchLogs, log)
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				log.WithError(err).Error("❌ Worker do histórico parou")
			}
		}()
	} else if cfg.RabbitMQ.URL != "" {
		log.Warn("⚠️ RABBITMQ_URL ignorado: sem DATABASE_URL não há onde gravar o histórico")
	}

	// 2. Cache de leads (opcional, desligado com CACHE_TTL=0)
	var (
		leadCache   usecase.LeadCache
		cachePinger handlers.Pinger
	)

	if cfg.Redis.CacheTTL > 0 {
		var redisClient *redis.Client
		if cfg.Redis.Addr != "" {
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer redisClient.Close()
		}

		c := cache.NewLeadCache(redisClient, cfg.Redis.CacheTTL, log)
		go c.StartCleanup(ctx, time.Minute)
		leadCache = c
		if redisClient != nil {
			cachePinger = c
		}
	}

	// 3. Busca
	jornadaClient := jornada.NewClient(cfg.Jornada.WebhookURL, cfg.Jornada.Timeout, log)
	searchUC := usecase.NewSearchLeadUseCase(jornadaClient, leadCache, recorder, middleware.SearchMetrics{}, log)

	sessions := usecase.NewSessionStore(searchUC, cfg.Session.TTL)
	go sessions.StartCleanup(ctx, time.Minute)

	limiter := middleware.NewRateLimiter(cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.BurstSize)
	go limiter.StartCleanup(ctx, cfg.Security.RateLimit.CleanupInterval)

	renderer, err := view.NewRenderer()
	if err != nil {
		log.WithError(err).Fatal("❌ Falha ao carregar templates")
	}

	// 4. Handlers e rotas
	r := router.New(router.Handlers{
		Page:    handlers.NewPageHandler(sessions, renderer, log, cfg.Session.SecureCookie),
		Search:  handlers.NewSearchHandler(searchUC, log),
		History: handlers.NewHistoryHandler(historyRepo, log),
		Health:  handlers.NewHealthHandler(db, rabbitPinger, cachePinger, jornadaClient.URL()),
	}, router.Options{
		AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
		RateLimiter:    limiter,
		RequestTimeout: cfg.RequestTimeout(),
		Logger:         log,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":        server.Addr,
			"environment": cfg.Server.Environment,
			"webhook":     jornadaClient.URL(),
		}).Info("🔥 LeadTracker rodando")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("❌ Servidor HTTP parou")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("⚠️ Encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("❌ Falha no encerramento do servidor")
		os.Exit(1)
	}

	log.Info("✅ Servidor encerrado")
}
