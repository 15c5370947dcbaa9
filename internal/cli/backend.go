package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/metamaze/internal/logging"
	"github.com/aretw0/metamaze/pkg/adapters/badger"
	"github.com/aretw0/metamaze/pkg/adapters/file"
	"github.com/aretw0/metamaze/pkg/adapters/loam"
	"github.com/aretw0/metamaze/pkg/adapters/memory"
	"github.com/aretw0/metamaze/pkg/adapters/redis"
	"github.com/aretw0/metamaze/pkg/persistence/middleware"
	"github.com/aretw0/metamaze/pkg/ports"
	"github.com/aretw0/metamaze/pkg/schema"
	"github.com/aretw0/metamaze/pkg/session"
	goredis "github.com/redis/go-redis/v9"
)

// InMemoryBadger selects an in-memory Badger database.
const InMemoryBadger = ":memory:"

// BackendOptions selects where sessions live and where mazes come from.
// At most one of RedisURL, BadgerPath and SessionsDir should be set; the
// first non-empty one wins and memory is the fallback.
type BackendOptions struct {
	RedisURL    string
	BadgerPath  string
	SessionsDir string

	// EncryptionKey seals every stored session with AES-256 when set. It is a
	// 64-character hex string; FallbackKeys open sessions sealed before a rotation.
	EncryptionKey string
	FallbackKeys  []string

	// Library is a directory of maze documents or a single config file.
	// Empty serves schema.Default().
	Library string

	Logger *slog.Logger
}

// Backend bundles the adapters a command needs.
type Backend struct {
	Store   ports.StateStore
	Locker  ports.DistributedLocker
	Library ports.MazeLibrary

	closers []func() error
}

// OpenBackend wires the store and library described by opts.
func OpenBackend(opts BackendOptions) (*Backend, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	b := &Backend{}

	switch {
	case opts.RedisURL != "":
		redisOpts, err := goredis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := goredis.NewClient(redisOpts)
		store := redis.NewFromClient(client)
		b.Store = store
		b.Locker = redis.NewLocker(client, "metamaze:")
		b.closers = append(b.closers, store.Close)
		opts.Logger.Info("Using Redis session store", "addr", redisOpts.Addr)

	case opts.BadgerPath != "":
		cfg := badger.DefaultConfig(opts.BadgerPath)
		if opts.BadgerPath == InMemoryBadger {
			cfg = badger.InMemoryConfig()
		}
		cfg.Logger = opts.Logger
		store, err := badger.Open(cfg)
		if err != nil {
			return nil, err
		}
		b.Store = store
		b.closers = append(b.closers, store.Close)
		opts.Logger.Info("Using Badger session store", "path", opts.BadgerPath)

	case opts.SessionsDir != "":
		b.Store = file.New(opts.SessionsDir)
		opts.Logger.Info("Using file session store", "path", opts.SessionsDir)

	default:
		b.Store = memory.NewStore()
	}

	if opts.EncryptionKey != "" {
		mw, err := encryptionMiddleware(opts.EncryptionKey, opts.FallbackKeys)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Store = middleware.Chain(b.Store, mw)
	}

	library, err := OpenLibrary(opts.Library)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Library = library
	return b, nil
}

func encryptionMiddleware(active string, fallback []string) (middleware.Middleware, error) {
	cfg := middleware.EncryptionConfig{}
	key, err := hex.DecodeString(active)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	cfg.ActiveKey = key
	for i, f := range fallback {
		key, err := hex.DecodeString(f)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(cfg)
}

// OpenLibrary resolves a --library value.
func OpenLibrary(path string) (ports.MazeLibrary, error) {
	if path == "" {
		return memory.NewLibrary(schema.Default())
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("maze library: %w", err)
	}
	if info.IsDir() {
		return loam.Open(path)
	}
	cfg, err := schema.Load(path)
	if err != nil {
		return nil, err
	}
	return memory.NewLibrary(cfg)
}

// Host builds a session host on the backend.
func (b *Backend) Host(logger *slog.Logger, opts ...session.HostOption) *session.Host {
	managerOpts := []session.Option{session.WithLogger(logger)}
	if b.Locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(b.Locker))
	}
	opts = append([]session.HostOption{session.WithHostLogger(logger)}, opts...)
	return session.NewHost(session.NewManager(b.Store, managerOpts...), b.Library, opts...)
}

// WatchLibrary invalidates cached engines whenever a maze document changes.
// It returns immediately when the library cannot be watched.
func (b *Backend) WatchLibrary(ctx context.Context, host *session.Host, logger *slog.Logger) {
	w, ok := b.Library.(ports.Watchable)
	if !ok {
		return
	}
	events, err := w.Watch(ctx)
	if err != nil {
		logger.Warn("Library watch disabled", "error", err)
		return
	}
	go func() {
		for name := range events {
			n := host.Invalidate(name)
			logger.Info("Maze changed", "maze", name, "engines_dropped", n)
		}
	}()
}

// Close releases every adapter.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
