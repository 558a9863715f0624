package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/distsched/distsched/internal/config"
	"github.com/distsched/distsched/internal/registry"
	"github.com/distsched/distsched/internal/runstate"
	"github.com/distsched/distsched/internal/transport/httpapi"
)

var (
	flagAddr    string
	flagDataDir string
	flagResults string
	flagLogLvl  string
)

var rootCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Distributed job-scheduling simulator: central scheduler",
	Run:   runScheduler,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := config.LoadScheduler()
	rootCmd.Flags().StringVar(&flagAddr, "addr", defaults.Addr, "HTTP listen address")
	rootCmd.Flags().StringVar(&flagDataDir, "data-dir", defaults.DataDir, "Directory datasets are read from")
	rootCmd.Flags().StringVar(&flagResults, "results-dir", defaults.ResultsDir, "Directory result CSVs are written to")
	rootCmd.Flags().StringVar(&flagLogLvl, "log", defaults.LogLevel, "Log level (debug, info, warn, error)")
}

func runScheduler(cmd *cobra.Command, args []string) {
	cfg := config.LoadScheduler()
	cfg.Addr = flagAddr
	cfg.DataDir = flagDataDir
	cfg.ResultsDir = flagResults
	cfg.LogLevel = flagLogLvl

	log := logrus.StandardLogger()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	reg := registry.New(cfg.WorkerTimeout)
	engine := runstate.NewEngine(reg, cfg.DataDir, cfg.ResultsDir, log)
	srv := httpapi.NewServer(engine, reg, log)

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
	}()

	log.WithField("addr", cfg.Addr).Info("scheduler starting")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("listen failed")
	}
}
