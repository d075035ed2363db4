package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sagar9995/shipcrop/internal/common"
	"github.com/sagar9995/shipcrop/internal/pipeline"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestQueueDeliversOneResultPerJob(t *testing.T) {
	proc := pipeline.NewProcessor(common.DefaultOptions(), nil, quietLogger())
	q := NewFolderQueue(proc, quietLogger(), WithWorkers(3))

	const jobs = 5
	for i := 0; i < jobs; i++ {
		if err := q.Enqueue(context.Background(), Job{InDir: t.TempDir(), OutDir: t.TempDir()}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	var got int
	for res := range q.Results() {
		got++
		// empty input folders always fail the run
		if !errors.Is(res.Err, common.ErrEmptyFolder) {
			t.Errorf("job %s: expected ErrEmptyFolder, got %v", res.Job.InDir, res.Err)
		}
	}
	if got != jobs {
		t.Errorf("got %d results, want %d", got, jobs)
	}
}

func TestQueuePanicIsolation(t *testing.T) {
	// a Processor without a clock panics on first use; the worker must turn
	// that into a per-job error instead of crashing the process
	proc := &pipeline.Processor{Logger: quietLogger(), Opts: common.DefaultOptions()}
	q := NewFolderQueue(proc, quietLogger(), WithWorkers(1))

	if err := q.Enqueue(context.Background(), Job{InDir: t.TempDir(), OutDir: t.TempDir()}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	res, ok := <-q.Results()
	if !ok {
		t.Fatal("expected a result for the panicked job")
	}
	if res.Err == nil {
		t.Fatal("panicked job must report an error")
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	proc := pipeline.NewProcessor(common.DefaultOptions(), nil, quietLogger())
	q := NewFolderQueue(proc, quietLogger(), WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if err := q.Enqueue(context.Background(), Job{InDir: "x", OutDir: "y"}); err != nil {
		t.Fatalf("enqueue after shutdown should be a no-op, got %v", err)
	}
}
