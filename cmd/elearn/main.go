package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-elearn-client/authflow"
	"github.com/jrsteele09/go-elearn-client/client"
	"github.com/jrsteele09/go-elearn-client/diag"
	"github.com/jrsteele09/go-elearn-client/endpoints"
	"github.com/jrsteele09/go-elearn-client/internal/config"
	"github.com/jrsteele09/go-elearn-client/notify"
	"github.com/jrsteele09/go-elearn-client/sessions"
	"github.com/jrsteele09/go-elearn-client/sessions/filerepo"
	"github.com/jrsteele09/go-elearn-client/sessions/redisrepo"
	sessionrepofakes "github.com/jrsteele09/go-elearn-client/sessions/repofakes"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const diagBuffer = 256

func main() {
	if err := run(os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		log.Fatalf("Error: %s\n", err)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger := newLogger(c)
	if len(args) < 2 {
		displayAppname(c.GetAppName())
	}

	ctx := context.Background()
	repo, err := sessionRepo(ctx, c)
	if err != nil {
		return err
	}
	store, err := sessions.Load(ctx, repo)
	if err != nil {
		return fmt.Errorf("sessions.Load: %w", err)
	}

	sink := diag.NewAsyncSink(logger.With().Str("component", "diag").Logger(), diagBuffer)
	defer sink.Close()

	apiClient := client.NewFromConfig(c, store,
		client.WithLogger(logger),
		client.WithNotifier(notify.NewLogNotifier(logger)),
		client.WithDiagnostics(sink),
	)
	executor := endpoints.NewExecutor(apiClient)

	cli := &commandLine{
		auth:     authflow.New(executor, authflow.WithLogger(logger)),
		executor: executor,
		out:      os.Stdout,
	}
	return cli.run(ctx, args)
}

func newLogger(c config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if c.GetEnv() == "DEV" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Str("app", c.GetAppName()).Logger()
}

func sessionRepo(ctx context.Context, c config.StorageConfig) (sessions.Repo, error) {
	switch c.GetSessionBackend() {
	case config.SessionBackendMemory:
		return sessionrepofakes.NewFakeSessionRepo(), nil
	case config.SessionBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		repo := redisrepo.New(rdb, c.GetRedisKeyPrefix())
		if err := repo.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redisrepo.Ping: %w", err)
		}
		return repo, nil
	default:
		var options []filerepo.Option
		if passphrase := c.GetSessionPassphrase(); passphrase != "" {
			options = append(options, filerepo.WithPassphrase(passphrase))
		}
		repo, err := filerepo.New(c.GetSessionFile(), options...)
		if err != nil {
			return nil, fmt.Errorf("filerepo.New: %w", err)
		}
		return repo, nil
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
