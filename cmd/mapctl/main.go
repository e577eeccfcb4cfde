// Command mapctl runs the mapping engine against the configured database
// without the HTTP server: applying inbound files, rendering outbound
// documents, listing the configuration and seeding the default processes.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	appintegration "github.com/wozzarvl/InterfazInAction/internal/application/integration"
	"github.com/wozzarvl/InterfazInAction/internal/bootstrap"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/config"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// session is the part of the wired application the commands use
type session struct {
	inbound interface {
		Apply(ctx context.Context, interfaceName, xmlContent string) (*appintegration.ApplyResult, error)
	}
	outbound interface {
		RenderOutboundXML(ctx context.Context, name string, recordIDs []int64) (map[int64]string, error)
	}
	configuration interface {
		ListProcesses(ctx context.Context) ([]appintegration.ProcessResponse, error)
	}
	migrate func(ctx context.Context) error
	seed    func(ctx context.Context) (int, error)
	close   func() error
}

// opener connects a session from the config file at path, or from the
// environment when path is empty
type opener func(ctx context.Context, path string) (*session, error)

func main() {
	if err := newRootCmd(openSession).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "mapctl",
		Short:        "Apply and render ERP XML interfaces",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./config.yaml or ERP_ environment)")

	withSession := func(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
		ctx := cmd.Context()
		s, err := open(ctx, configPath)
		if err != nil {
			return err
		}
		defer func() { _ = s.close() }()
		return fn(ctx, s)
	}

	root.AddCommand(
		newApplyCmd(withSession),
		newRenderCmd(withSession),
		newListCmd(withSession),
		newSeedCmd(withSession),
	)
	return root
}

type sessionRunner func(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error

func openSession(ctx context.Context, path string) (*session, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	return &session{
		inbound:       app.Inbound,
		outbound:      app.Outbound,
		configuration: app.Configuration,
		migrate:       app.Database.MigrateConfiguration,
		seed: func(ctx context.Context) (int, error) {
			return persistence.SeedDefaults(ctx, app.Processes)
		},
		close: func() error {
			err := app.Close(context.Background())
			if err != nil {
				log.Error("Error releasing resources", zap.Error(err))
			}
			_ = log.Sync()
			return err
		},
	}, nil
}
