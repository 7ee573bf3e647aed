package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"refracalc/internal/config"
	"refracalc/internal/infrastructure"
	"refracalc/internal/services"
	"refracalc/internal/store"
)

// cliEnv carries the global flags and the lazily opened service
type cliEnv struct {
	configPath string
	logLevel   string
	storage    string
	dataDir    string

	cfg     *config.Config
	logger  *slog.Logger
	store   store.Store
	service *services.RefractometerService
}

func (e *cliEnv) load(cmd *cobra.Command) error {
	var err error
	if e.configPath != "" {
		e.cfg, err = config.LoadFrom(e.configPath)
	} else {
		e.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if e.dataDir != "" {
		e.cfg.Storage.DataDir = e.dataDir
		if e.storage == "" {
			e.storage = config.DriverFile
		}
	}
	if e.storage != "" {
		e.cfg.Storage.Driver = e.storage
	}

	logging := e.cfg.Logging
	logging.Level = e.logLevel
	logging.Format = "text"
	e.logger = infrastructure.NewLogger(logging, cmd.ErrOrStderr())
	cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
	return nil
}

// open returns the service, creating it and its store on first use
func (e *cliEnv) open(ctx context.Context) (*services.RefractometerService, error) {
	if e.service != nil {
		return e.service, nil
	}

	st, err := store.New(ctx, e.cfg.Storage, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", e.cfg.Storage.Driver, err)
	}
	svc, err := services.NewRefractometerService(ctx, e.cfg.Engine, st, nil, nil, nil, e.logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	e.store = st
	e.service = svc
	return svc, nil
}

func (e *cliEnv) close() error {
	if e.store == nil {
		return nil
	}
	err := e.store.Close()
	e.store = nil
	e.service = nil
	return err
}
