// Command server runs the two-factor authentication service.
//
// Storage is selected at startup: pending sessions and rate-limit counters
// live in memory by default and in Redis when USE_REDIS=true; credentials
// live in memory by default and in PostgreSQL when USE_POSTGRES=true.
// Production deployments with more than one replica need both flags on.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mfakit/pkg/config"
	"mfakit/pkg/credential"
	"mfakit/pkg/enrollment"
	"mfakit/pkg/httpserver"
	"mfakit/pkg/logger"
	"mfakit/pkg/pg"
	"mfakit/pkg/ratelimiter"
	"mfakit/pkg/redis"
	"mfakit/pkg/secrets"
	"mfakit/svc/twofactor"
)

type appConfig struct {
	AppName     string `env:"APP_NAME" envDefault:"mfakit"`
	UseRedis    bool   `env:"USE_REDIS" envDefault:"false"`
	UsePostgres bool   `env:"USE_POSTGRES" envDefault:"false"`
}

func main() {
	ctx := context.Background()

	var appCfg appConfig
	config.MustLoad(&appCfg)
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	var enrollCfg enrollment.Config
	config.MustLoad(&enrollCfg)
	var limitCfg ratelimiter.Config
	config.MustLoad(&limitCfg)
	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	log := logger.NewFromConfig(logCfg, logger.WithAttr(logger.Component(appCfg.AppName)))

	masterKey, err := secrets.DecodeMasterKey(enrollCfg.MasterKey)
	if err != nil {
		log.Error("invalid master key", logger.Error(err))
		os.Exit(1)
	}

	healthchecks := map[string]func(context.Context) error{}

	var (
		sessions enrollment.Store
		counters ratelimiter.Store
	)
	if appCfg.UseRedis {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.Error("failed to connect to redis", logger.Error(err))
			os.Exit(1)
		}
		defer client.Close()

		sessions = enrollment.NewRedisStore(client, enrollCfg.SessionTTL)
		counters = ratelimiter.NewRedisStore(client)
		healthchecks["redis"] = redis.Healthcheck(client)
	} else {
		memSessions := enrollment.NewMemoryStore(enrollCfg.SessionTTL,
			enrollment.WithCapacity(enrollCfg.SessionCapacity))
		defer memSessions.Close()
		sessions = memSessions

		memCounters := ratelimiter.NewMemoryStore()
		defer memCounters.Close()
		counters = memCounters
	}

	var creds credential.Repository
	if appCfg.UsePostgres {
		var pgCfg pg.Config
		config.MustLoad(&pgCfg)
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			log.Error("failed to connect to postgres", logger.Error(err))
			os.Exit(1)
		}
		defer pool.Close()

		if err := credential.Migrate(ctx, pool, pgCfg, log); err != nil {
			log.Error("failed to run migrations", logger.Error(err))
			os.Exit(1)
		}
		creds = credential.NewPostgresRepository(pool)
		healthchecks["postgres"] = pg.Healthcheck(pool)
	} else {
		creds = credential.NewMemoryRepository()
	}

	limiter, err := ratelimiter.NewFixedWindow(counters, limitCfg)
	if err != nil {
		log.Error("invalid rate limiter configuration", logger.Error(err))
		os.Exit(1)
	}

	enrollSvc, err := enrollment.NewService(sessions, limiter, creds, masterKey,
		enrollment.WithIssuer(enrollCfg.Issuer),
		enrollment.WithBackupCodeCount(enrollCfg.BackupCodeCount),
		enrollment.WithQRCodeSize(enrollCfg.QRCodeSize),
		enrollment.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to create enrollment service", logger.Error(err))
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", healthzHandler(healthchecks))
	r.Mount("/2fa", twofactor.NewService(enrollSvc, twofactor.WithLogger(log)).Handle())

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func healthzHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				http.Error(w, name+" unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
