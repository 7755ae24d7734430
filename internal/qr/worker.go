// Package qr generates QR code images for machine IDs in the background.
// Generation is fire-and-forget: a failed image is logged and reported, but
// never rolls back the registration that requested it.
package qr

import (
	"context"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"machine-loan-backend/config"
)

// Encoder writes a QR image for content to path.
type Encoder interface {
	Encode(content, path string) error
}

// PNGEncoder is the real implementation backed by go-qrcode. Low error
// correction at a fixed pixel size matches what the label printer expects.
type PNGEncoder struct {
	Size int
}

// Encode writes the PNG file.
func (e *PNGEncoder) Encode(content, path string) error {
	return qrcode.WriteFile(content, qrcode.Low, e.Size, path)
}

// WorkerPool consumes machine IDs and writes one image per ID under the
// output directory.
type WorkerPool struct {
	size    int
	jobs    chan string
	dir     string
	logger  *zap.Logger
	encoder Encoder
}

// NewWorkerPool creates the pool. The job buffer absorbs registration
// bursts without blocking the caller.
func NewWorkerPool(cfg config.QRConfig, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    cfg.WorkerPool,
		jobs:    make(chan string, 64),
		dir:     cfg.OutputDir,
		logger:  logger,
		encoder: &PNGEncoder{Size: cfg.Size},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	if err := os.MkdirAll(wp.dir, 0o755); err != nil {
		wp.logger.Error("create qr output directory", zap.Error(err))
	}
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	for {
		select {
		case machineID := <-wp.jobs:
			path := filepath.Join(wp.dir, machineID+".png")
			if err := wp.encoder.Encode(machineID, path); err != nil {
				wp.logger.Error("qr generation failed",
					zap.String("machine", machineID), zap.Error(err))
				continue
			}
			wp.logger.Info("qr generated",
				zap.String("machine", machineID), zap.String("file", path))
		case <-ctx.Done():
			wp.logger.Info("qr worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a machine ID for generation. A full queue drops the job
// with a warning rather than blocking a registration.
func (wp *WorkerPool) Dispatch(machineID string) {
	select {
	case wp.jobs <- machineID:
	default:
		wp.logger.Warn("qr queue full, dropping job", zap.String("machine", machineID))
	}
}
