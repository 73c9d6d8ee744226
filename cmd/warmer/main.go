package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/semaphore"

	"booking_bot/internal/adapters/observability"
	redisad "booking_bot/internal/adapters/redis"
	"booking_bot/internal/adapters/yandex"
	"booking_bot/internal/app"
	"booking_bot/internal/domain"
	"booking_bot/internal/shared"
	mysqlrepo "booking_bot/internal/storage/mysql"
)

// warmer resolves a list of venue names ahead of time so the API answers
// popular venues from the cache.
func main() {
	a := &cli.App{
		Name:      "warmer",
		Usage:     "resolve venue names and populate the venue cache",
		ArgsUsage: "[venue name...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read venue names from `FILE`, one per line"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: 4, Usage: "concurrent lookups"},
			&cli.BoolFlag{Name: "refresh", Usage: "drop cached entries before resolving"},
		},
		Action: run,
	}
	if err := a.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("warmer failed")
	}
}

func run(c *cli.Context) error {
	ctx := c.Context
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	zerolog.DefaultContextLogger = &log.Logger

	names, err := collectNames(c.Args().Slice(), c.String("file"))
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no venue names given")
	}
	if cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required to warm the cache")
	}
	refresh := c.Bool("refresh")
	workers := c.Int("workers")
	if workers <= 0 {
		workers = 1
	}

	places, err := yandex.New(cfg.MapsBaseURL, cfg.MapsKey, yandex.Options{
		Lang:    cfg.MapsLang,
		CityLL:  cfg.MapsCityLL,
		CitySpn: cfg.MapsCitySpn,
		RPS:     cfg.MapsRPS,
		Timeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		return fmt.Errorf("init maps client: %w", err)
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	var misses domain.MissLog
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		misses = mysqlrepo.New(db)
	}

	venues := app.NewVenueService(places, cache, misses, cfg.CacheTTL, cfg.MissCacheTTL)

	log.Info().Int("names", len(names)).Int("workers", workers).Msg("warmer starting")

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var found, missing, failed int64

	for _, name := range names {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("semaphore acquire failed")
			break
		}

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer sem.Release(1)

			lctx, cancel := context.WithTimeout(ctx, cfg.UpstreamTimeout)
			defer cancel()

			if refresh {
				if err := venues.Forget(lctx, name); err != nil {
					log.Warn().Str("name", name).Err(err).Msg("cache drop failed")
				}
			}
			v, ok, err := venues.SearchLocation(lctx, name)
			switch {
			case err != nil:
				atomic.AddInt64(&failed, 1)
				log.Warn().Str("name", name).Err(err).Msg("lookup failed")
			case !ok:
				atomic.AddInt64(&missing, 1)
				log.Info().Str("name", name).Msg("not found")
			default:
				atomic.AddInt64(&found, 1)
				log.Info().Str("name", name).Bool("phone", v.PhoneNumber != nil).Msg("cached")
			}
		}(name)
	}

	wg.Wait()
	log.Info().Int64("found", found).Int64("missing", missing).Int64("failed", failed).Msg("warming completed")
	if failed > 0 {
		return fmt.Errorf("%d lookups failed", failed)
	}
	return nil
}

// collectNames merges positional args with the lines of file, dropping blanks,
// #-comments and duplicates.
func collectNames(args []string, file string) ([]string, error) {
	raw := append([]string(nil), args...)
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			raw = append(raw, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, n := range raw {
		n = strings.TrimSpace(n)
		if n == "" || strings.HasPrefix(n, "#") {
			continue
		}
		k := strings.ToLower(n)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}
