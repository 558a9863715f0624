package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/distsched/distsched/internal/config"
	"github.com/distsched/distsched/internal/transport/workerclient"
	"github.com/distsched/distsched/internal/util"
	"github.com/distsched/distsched/internal/worker"
)

var (
	flagWorkerID string
	flagSchedURL string
	flagCores    int
	flagSpeedup  float64
	flagLogLvl   string
)

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Distributed job-scheduling simulator: pull-model worker",
	Run:   runWorker,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := config.LoadWorker()
	rootCmd.Flags().StringVar(&flagWorkerID, "worker-id", defaults.WorkerID, "Stable worker id (random if empty)")
	rootCmd.Flags().StringVar(&flagSchedURL, "scheduler-url", defaults.SchedulerURL, "Scheduler base URL")
	rootCmd.Flags().IntVar(&flagCores, "cores", defaults.Cores, "Number of cores this worker advertises")
	rootCmd.Flags().Float64Var(&flagSpeedup, "speedup", defaults.Speedup, "Wall-clock to simulated-time speedup factor")
	rootCmd.Flags().StringVar(&flagLogLvl, "log", defaults.LogLevel, "Log level (debug, info, warn, error)")
}

func runWorker(cmd *cobra.Command, args []string) {
	cfg := config.LoadWorker()
	cfg.WorkerID = flagWorkerID
	cfg.SchedulerURL = flagSchedURL
	cfg.Cores = flagCores
	cfg.Speedup = flagSpeedup
	cfg.LogLevel = flagLogLvl

	log := logrus.StandardLogger()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = "worker-" + util.NewRequestID()
	}

	client := workerclient.New(cfg.SchedulerURL)

	for {
		if err := client.Register(workerID, cfg.Cores); err != nil {
			log.WithError(err).Warn("register_failed, retrying")
			time.Sleep(time.Second)
			continue
		}
		break
	}
	log.WithFields(logrus.Fields{"worker_id": workerID, "cores": cfg.Cores}).Info("worker_registered")

	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("worker shutting down")
		cancel()
	}()

	go heartbeatLoop(ctx, client, workerID, cfg.Heartbeat, log)

	pool := worker.NewPool(workerID, cfg.Cores, cfg.Speedup, client, log)
	pool.Start(ctx)
	pool.Wait()
}

func heartbeatLoop(ctx context.Context, client *workerclient.Client, workerID string, interval time.Duration, log *logrus.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Heartbeat(workerID); err != nil {
				log.WithError(err).Warn("heartbeat_failed")
			}
		}
	}
}
