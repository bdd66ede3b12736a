package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/modmill/modmill/pkg/cache"
	"github.com/modmill/modmill/pkg/config"
	"github.com/modmill/modmill/pkg/modrinth"
	"github.com/modmill/modmill/pkg/pack"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	refresh    bool
}

// app bundles the wired collaborators every command needs: resolved
// config, the cache backend, the registry client, and the pack store.
type app struct {
	cfg     config.Config
	backend cache.Cache
	client  *modrinth.Client
	store   *pack.Store
}

// newApp loads configuration and wires the cache backend, registry
// client, and pack store. Callers must close the returned app.
func newApp(ctx context.Context, flags *rootFlags) (*app, error) {
	var (
		cfg config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.Load(flags.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(ctx, cfg, flags.refresh)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		backend: backend,
		client:  modrinth.NewClient(backend, cfg.CacheTTL.Duration),
		store:   pack.NewStore(cfg.Root),
	}, nil
}

func newBackend(ctx context.Context, cfg config.Config, refresh bool) (cache.Cache, error) {
	if refresh {
		return cache.NewNullCache(), nil
	}
	switch cfg.CacheBackend {
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case config.BackendNone:
		return cache.NewNullCache(), nil
	default:
		return cache.NewFileCache(cfg.CacheDir)
	}
}

func (a *app) close() {
	_ = a.backend.Close()
}

// loadPack resolves a pack argument: an absolute or relative path is
// loaded directly, a bare name is looked up under the store root.
func (a *app) loadPack(arg string) (*pack.Pack, error) {
	if filepath.IsAbs(arg) || strings.ContainsRune(arg, filepath.Separator) {
		return a.store.Load(arg)
	}
	return a.store.LoadByName(arg)
}
