package sandbox

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

//go:embed assets/worker.js
var workerScript []byte

var (
	workerPathOnce sync.Once
	workerPath     string
	workerPathErr  error
)

// extractedWorkerPath writes the embedded worker script to a temp file once
// per process and returns its path. Subsequent calls reuse the same file.
func extractedWorkerPath() (string, error) {
	workerPathOnce.Do(func() {
		dir := os.TempDir()
		path := filepath.Join(dir, "promptmgr-worker.js")
		if err := os.WriteFile(path, workerScript, 0o644); err != nil {
			workerPathErr = fmt.Errorf("sandbox: failed to extract worker script: %w", err)
			return
		}
		workerPath = path
	})
	return workerPath, workerPathErr
}
