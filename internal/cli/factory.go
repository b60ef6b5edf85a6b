package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/badger"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/evaluator/heuristic"
	"github.com/aretw0/arbor/pkg/evaluator/openai"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
)

// ErrMissingAPIKey is returned when the openai evaluator has no key in its environment variable.
var ErrMissingAPIKey = errors.New("missing API key")

// NewEvaluator builds the evaluator selected by cfg.
func NewEvaluator(cfg config.EvaluatorConfig, logger *slog.Logger) (ports.Evaluator, error) {
	switch cfg.Kind {
	case config.EvaluatorHeuristic, "":
		if cfg.Seed != 0 {
			return heuristic.New(heuristic.WithSeed(cfg.Seed)), nil
		}
		return heuristic.New(), nil
	case config.EvaluatorOpenAI:
		key := cfg.APIKey()
		if key == "" {
			return nil, fmt.Errorf("%w: set %s", ErrMissingAPIKey, cfg.APIKeyEnv)
		}
		opts := []openai.Option{
			openai.WithTemperature(cfg.Temperature),
			openai.WithLogger(logger),
		}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(key, opts...), nil
	default:
		return nil, fmt.Errorf("unknown evaluator kind %q", cfg.Kind)
	}
}

// OpenArchive opens the archive selected by cfg, wrapped in the redaction
// and encryption middlewares it asks for. The "none" kind yields a nil
// archive. The returned close function is never nil.
func OpenArchive(cfg config.ArchiveConfig, logger *slog.Logger) (ports.Archive, func() error, error) {
	archive, closeFn, err := openBackend(cfg, logger)
	if err != nil || archive == nil {
		return archive, closeFn, err
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		for _, p := range cfg.Redact {
			if _, err := regexp.Compile(p); err != nil {
				_ = closeFn()
				return nil, noopClose, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewRedactionMiddleware(cfg.Redact))
	}
	key, err := cfg.EncryptionKey()
	if err != nil {
		_ = closeFn()
		return nil, noopClose, err
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(archive, mws...), closeFn, nil
}

func noopClose() error { return nil }

func openBackend(cfg config.ArchiveConfig, logger *slog.Logger) (ports.Archive, func() error, error) {
	noop := noopClose

	switch cfg.Kind {
	case config.ArchiveNone, "":
		return nil, noop, nil
	case config.ArchiveMemory:
		return memory.NewStore(), noop, nil
	case config.ArchiveFile:
		return file.New(cfg.Path), noop, nil
	case config.ArchiveRedis:
		store, err := redis.New(cfg.RedisURL, redis.WithTTL(cfg.TTL))
		if err != nil {
			return nil, noop, fmt.Errorf("error opening redis archive: %w", err)
		}
		return store, store.Close, nil
	case config.ArchiveBadger:
		store, err := badger.Open(badger.Config{Path: cfg.Path, TTL: cfg.TTL, Logger: logger})
		if err != nil {
			return nil, noop, fmt.Errorf("error opening badger archive: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown archive kind %q", cfg.Kind)
	}
}
