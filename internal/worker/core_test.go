package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distsched/distsched/internal/transport/workerclient"
)

// fakeScheduler dispatches exactly one job then answers "done" forever,
// letting a test assert the core shuts down cleanly on context cancel
// after completing its one slice.
func fakeScheduler(t *testing.T, doneCh chan<- struct{}) *httptest.Server {
	t.Helper()
	var dispatched int32

	mux := http.NewServeMux()
	mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
		if atomic.CompareAndSwapInt32(&dispatched, 0, 1) {
			json.NewEncoder(w).Encode(map[string]any{
				"status":       "ok",
				"job_id":       "job-1",
				"execution_ms": 5,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "done"})
	})
	mux.HandleFunc("/done", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "job-1", body["job_id"])
		json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
		close(doneCh)
	})
	return httptest.NewServer(mux)
}

func TestCore_Run_DispatchesExecutesAndReportsOneJob(t *testing.T) {
	doneCh := make(chan struct{})
	srv := fakeScheduler(t, doneCh)
	defer srv.Close()

	client := workerclient.New(srv.URL)
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	core := NewCore("w1", 0, 1.0, client, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go core.Run(ctx)

	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "core never reported /done")
	}
}

func TestPool_StartAndWait_StopsOnContextCancel(t *testing.T) {
	doneCh := make(chan struct{}, 4)
	srv := fakeScheduler(t, doneCh)
	defer srv.Close()

	client := workerclient.New(srv.URL)
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	pool := NewPool("w1", 2, 1.0, client, log)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "pool did not stop after context cancel")
	}
}
