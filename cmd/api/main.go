package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "booking_bot/internal/adapters/http_server"
	"booking_bot/internal/adapters/llm"
	"booking_bot/internal/adapters/observability"
	redisad "booking_bot/internal/adapters/redis"
	"booking_bot/internal/adapters/twilio"
	"booking_bot/internal/adapters/yandex"
	"booking_bot/internal/app"
	"booking_bot/internal/domain"
	"booking_bot/internal/shared"
	mysqlrepo "booking_bot/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	venues, closeDeps := buildVenueService(ctx, cfg)
	defer closeDeps()

	completer, err := llm.New(cfg.OpenAIKey, llm.Options{
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: cfg.OpenAITemperature,
		Timeout:     cfg.UpstreamTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LLM client")
	}

	var messenger domain.Messenger
	if cfg.NotifyMode == shared.NotifySend {
		tw, err := twilio.New(cfg.TwilioBaseURL, cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, cfg.UpstreamTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Twilio client")
		}
		messenger = tw
	}

	pipeline := app.NewPipeline(completer, venues, app.NewNotifier(cfg.NotifyMode, messenger), app.PipelineOptions{
		Prompts: app.Prompts{
			Generate: cfg.GeneratePrompt,
			Extract:  cfg.ExtractPrompt,
			Apology:  cfg.ApologyTemplate,
		},
		MaxLocationRunes: cfg.MaxLocationRunes,
		CallTimeout:      cfg.UpstreamTimeout,
		Deadline:         cfg.PipelineTimeout,
	})

	// http
	srv := server.New(server.Options{Timeout: cfg.HTTPTimeout, CORSOrigins: cfg.CORSOrigins})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Pipeline: pipeline, Venues: venues})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("notify", cfg.NotifyMode).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// buildVenueService wires the maps client with the optional Redis cache and
// MySQL miss log. The returned func closes whatever was opened.
func buildVenueService(ctx context.Context, cfg shared.Config) (*app.VenueService, func()) {
	var closers []func()

	places, err := yandex.New(cfg.MapsBaseURL, cfg.MapsKey, yandex.Options{
		Lang:    cfg.MapsLang,
		CityLL:  cfg.MapsCityLL,
		CitySpn: cfg.MapsCitySpn,
		RPS:     cfg.MapsRPS,
		Timeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize maps client")
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pctx); err != nil {
			// the cache is an optimization; run without it
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, venue cache disabled")
		} else {
			cache = rc
			log.Info().Str("addr", cfg.RedisAddr).Msg("venue cache enabled")
		}
		cancel()
		closers = append(closers, func() { _ = rc.Close() })
	}

	var misses domain.MissLog
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		log.Info().Msg("database connection ok")
		misses = mysqlrepo.New(db)
		closers = append(closers, func() { _ = db.Close() })
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return app.NewVenueService(places, cache, misses, cfg.CacheTTL, cfg.MissCacheTTL), closeAll
}
