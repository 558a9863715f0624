// Package config reads the environment variables that configure the
// scheduler and worker binaries. Grounded on the teacher's
// cmd/server/main.go getenvInt helper, extended with a duration and a
// float variant for the new knobs (speedup, timeouts).
package config

import (
	"os"
	"strconv"
	"time"
)

func GetenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func GetenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func GetenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func GetenvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetenvDurationSec(key string, defSec int) time.Duration {
	return time.Duration(GetenvInt(key, defSec)) * time.Second
}

// Scheduler is the scheduler binary's full configuration.
type Scheduler struct {
	Addr           string
	DataDir        string
	ResultsDir     string
	WorkerTimeout  time.Duration
	LogLevel       string
}

func LoadScheduler() Scheduler {
	return Scheduler{
		Addr:          GetenvString("SCHEDULER_ADDR", ":8080"),
		DataDir:       GetenvString("DATA_DIR", "./data"),
		ResultsDir:    GetenvString("RESULTS_DIR", "./results"),
		WorkerTimeout: GetenvDurationSec("WORKER_TIMEOUT_SEC", 10),
		LogLevel:      GetenvString("LOG_LEVEL", "info"),
	}
}

// Worker is the worker binary's full configuration.
type Worker struct {
	WorkerID     string
	SchedulerURL string
	Cores        int
	Speedup      float64
	Heartbeat    time.Duration
	LogLevel     string
}

func LoadWorker() Worker {
	return Worker{
		WorkerID:     GetenvString("WORKER_ID", ""),
		SchedulerURL: GetenvString("SCHEDULER_URL", "http://localhost:8080"),
		Cores:        GetenvInt("CORES", 1),
		Speedup:      GetenvFloat("SPEEDUP", 1.0),
		Heartbeat:    GetenvDurationSec("HEARTBEAT_SEC", 2),
		LogLevel:     GetenvString("LOG_LEVEL", "info"),
	}
}
