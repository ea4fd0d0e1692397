package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/doeshing/kidchat/internal/application/credential"
	"github.com/doeshing/kidchat/internal/application/reveal"
	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/infrastructure/activity"
	"github.com/doeshing/kidchat/internal/infrastructure/ai"
	"github.com/doeshing/kidchat/internal/infrastructure/config"
	"github.com/doeshing/kidchat/internal/infrastructure/security"
	"github.com/doeshing/kidchat/internal/infrastructure/settings"
	"github.com/doeshing/kidchat/internal/pkg/logger"
	"github.com/doeshing/kidchat/internal/ports"
)

// Options controls how the container is built.
type Options struct {
	Verbose    bool
	ConfigPath string
	Model      string
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config       domain.Config
	ConfigLoader *config.FileLoader
	DeviceID     string
	Model        domain.ModelDefinition
	Store        ports.SettingsStore
	Activity     ports.ActivityLog
	Filter       *security.KeywordFilter
	Credentials  *credential.Manager
	Engine       *session.Engine
	Logger       ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	log := logger.New(opts.LogOutput, opts.Verbose)

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	model, err := selectModel(cfg, opts.Model)
	if err != nil {
		return nil, err
	}
	generator, err := ai.NewFactory(time.Duration(cfg.GetTimeoutSeconds()) * time.Second).ForModel(model)
	if err != nil {
		return nil, err
	}

	dataDir := cfg.Storage.DataDir
	deviceID, err := settings.ResolveDeviceID(cfg.DeviceID, dataDir)
	if err != nil {
		return nil, err
	}

	filter := security.NewKeywordFilter(cfg.GetPlaceholder())
	storeOpts := []settings.Option{
		settings.WithDefaultMinutes(cfg.GetDefaultMinutes()),
		settings.WithLogger(log),
	}
	if opts.Now != nil {
		storeOpts = append(storeOpts, settings.WithClock(opts.Now))
	}
	if cfg.Filter.SeedFile != "" {
		seed, err := security.LoadSeedTerms(cfg.Filter.SeedFile)
		if err != nil {
			log.Warn("seed terms not loaded", map[string]interface{}{"file": cfg.Filter.SeedFile, "error": err.Error()})
		} else {
			storeOpts = append(storeOpts, settings.WithSeedTerms(seed))
		}
	}
	store, err := settings.Open(cfg.GetStorageBackend(), dataDir, storeOpts...)
	if err != nil {
		return nil, err
	}

	activityLog := activity.Open(filepath.Join(dataDir, "activity.db"))
	credentials := credential.NewManager(security.NewBcryptHasher(0))

	engine := &session.Engine{
		Credentials: credentials,
		Reveals:     reveal.NewAuthorizer(credentials),
		Filter:      filter,
		Generator:   generator,
		Store:       store,
		Activity:    activityLog,
		Logger:      log,
		Now:         opts.Now,
	}

	log.Debug("container ready", map[string]interface{}{
		"device":   deviceID,
		"model":    model.Name,
		"provider": generator.Name(),
		"backend":  cfg.GetStorageBackend(),
	})

	return &Container{
		Config:       cfg,
		ConfigLoader: cfgLoader,
		DeviceID:     deviceID,
		Model:        model,
		Store:        store,
		Activity:     activityLog,
		Filter:       filter,
		Credentials:  credentials,
		Engine:       engine,
		Logger:       log,
	}, nil
}

// OpenSession loads the device state. A load failure is logged and the
// session continues on defaults.
func (c *Container) OpenSession(ctx context.Context) (*session.State, error) {
	st, err := c.Engine.Open(ctx, c.DeviceID)
	if err != nil && !errors.Is(err, domain.ErrPersistenceFailure) {
		return nil, err
	}
	return st, nil
}

// Close releases stores holding open handles.
func (c *Container) Close() error {
	var errs []error
	for _, v := range []interface{}{c.Store, c.Activity} {
		if closer, ok := v.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}

func selectModel(cfg domain.Config, override string) (domain.ModelDefinition, error) {
	if override != "" {
		model, ok := cfg.FindModelByName(override)
		if !ok {
			return domain.ModelDefinition{}, fmt.Errorf("model %s not found in configuration", override)
		}
		return model, nil
	}
	return cfg.GetDefaultModel()
}
