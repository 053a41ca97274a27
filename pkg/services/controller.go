package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kerbaras/minty/pkg/api"
	"github.com/kerbaras/minty/pkg/config"
	"github.com/kerbaras/minty/pkg/data"
	"github.com/kerbaras/minty/pkg/integrations"
	"github.com/kerbaras/minty/pkg/logging"
	"github.com/kerbaras/minty/pkg/session"
	"github.com/kerbaras/minty/pkg/sources"
	"github.com/sirupsen/logrus"
)

// Controller wires the client together: one store, one API client, one
// session and one exporter, shared by the TUI and the CLI commands.
type Controller struct {
	cfg      *config.Config
	log      *logrus.Logger
	repo     *data.Repository
	client   *api.Client
	source   *sources.Minty
	session  *session.Store
	exporter *Exporter

	closers []io.Closer
}

// NewController logs to the configured log file.
func NewController(ctx context.Context, cfg *config.Config) (*Controller, error) {
	log, logFile, err := logging.OpenFile(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	c, err := NewControllerWithLogger(ctx, cfg, log)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	c.closers = append(c.closers, logFile)
	return c, nil
}

func NewControllerWithLogger(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := data.Open(cfg.Store, cfg.StorePath())
	if err != nil {
		return nil, err
	}
	repo := data.NewRepository(db)

	client := api.NewClient(cfg.BackendURL, api.WithLogger(log.WithField("component", "api")))
	source := sources.NewMinty(client)

	store, err := session.New(ctx, source, repo, log)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	exporter := NewExporter(
		client,
		integrations.NewPageProcessor(integrations.DefaultMaxWidth),
		integrations.NewEPubBuilder(cfg.ExportDir),
		WithExportLogger(log),
	)

	log.WithFields(logrus.Fields{
		"backend": cfg.BackendURL,
		"store":   cfg.Store,
	}).Info("client started")

	return &Controller{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		client:   client,
		source:   source,
		session:  store,
		exporter: exporter,
		closers:  []io.Closer{repo},
	}, nil
}

func (c *Controller) Config() *config.Config { return c.cfg }

func (c *Controller) Logger() *logrus.Logger { return c.log }

func (c *Controller) Source() sources.Source { return c.source }

func (c *Controller) Session() *session.Store { return c.session }

func (c *Controller) Exporter() *Exporter { return c.exporter }

// ExportTo returns an exporter writing into dir instead of the configured
// export directory, sharing this controller's fetcher.
func (c *Controller) ExportTo(dir string) *Exporter {
	if dir == "" || dir == c.cfg.ExportDir {
		return c.exporter
	}
	return NewExporter(
		c.client,
		integrations.NewPageProcessor(integrations.DefaultMaxWidth),
		integrations.NewEPubBuilder(dir),
		WithExportLogger(c.log),
	)
}

// Close cancels in-flight identity resolution, then releases the store and
// the log file.
func (c *Controller) Close() error {
	c.session.Close()
	c.exporter.Close()

	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
