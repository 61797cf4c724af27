package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"taskboard/config"
)

// StoreFile writes uploaded bytes into the configured upload directory and
// returns the opaque reference the task ledger persists verbatim. The name
// is prefixed with a millisecond timestamp so repeated uploads of the same
// filename never collide.
func StoreFile(filename string, r io.Reader) (string, error) {
	dir := config.AppConfig.UploadDir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return "/uploads/" + name, nil
}
