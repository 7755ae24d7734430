package qr

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"machine-loan-backend/config"
)

// mockEncoder records encode calls instead of rendering images.
type mockEncoder struct {
	EncodeFunc func(content, path string) error
}

func (m *mockEncoder) Encode(content, path string) error {
	return m.EncodeFunc(content, path)
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(config.QRConfig{OutputDir: t.TempDir(), Size: 128, WorkerPool: 1}, zap.NewNop())

	wp.Dispatch("DRL-001")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "DRL-001", job)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DropsWhenFull(t *testing.T) {
	wp := NewWorkerPool(config.QRConfig{OutputDir: t.TempDir(), Size: 128, WorkerPool: 1}, zap.NewNop())

	// Without workers running, fill the buffer and push one more.
	for i := 0; i < cap(wp.jobs); i++ {
		wp.Dispatch("FILL-1")
	}
	wp.Dispatch("DROP-1")

	assert.Len(t, wp.jobs, cap(wp.jobs), "the overflow job is dropped, not queued")
}

func TestWorkerPool_EncodesDispatchedIDs(t *testing.T) {
	dir := t.TempDir()
	wp := NewWorkerPool(config.QRConfig{OutputDir: dir, Size: 128, WorkerPool: 2}, zap.NewNop())

	var mu sync.Mutex
	var wg sync.WaitGroup
	seen := map[string]string{}
	wp.encoder = &mockEncoder{
		EncodeFunc: func(content, path string) error {
			mu.Lock()
			seen[content] = path
			mu.Unlock()
			wg.Done()
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wg.Add(2)
	wp.Dispatch("DRL-001")
	wp.Dispatch("SAW-002")

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for workers")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, filepath.Join(dir, "DRL-001.png"), seen["DRL-001"])
	assert.Equal(t, filepath.Join(dir, "SAW-002.png"), seen["SAW-002"])
}

func TestPNGEncoder_WritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DRL-001.png")

	enc := &PNGEncoder{Size: 64}
	require.NoError(t, enc.Encode("DRL-001", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
