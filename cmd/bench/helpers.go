package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

func TempDir() (string, func()) {
	dir, err := os.MkdirTemp("", "hashstore_bench_*")
	if err != nil {
		panic("Could not create temp directory: " + err.Error())
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

// ScratchDB returns a fresh database path inside dir
func ScratchDB(dir, prefix string) string {
	return filepath.Join(dir, prefix+"-"+uuid.NewString()+".db")
}

// Phase runs f and logs how long it took
func Phase(logger *slog.Logger, name string, n int, f func() error) error {
	start := time.Now()
	err := f()
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("phase failed", "phase", name, "elapsed", elapsed, "error", err)
		return err
	}

	perOp := time.Duration(0)
	if n > 0 {
		perOp = elapsed / time.Duration(n)
	}
	logger.Info("phase finished", "phase", name, "n", n, "elapsed", elapsed, "per_op", perOp)
	return nil
}
