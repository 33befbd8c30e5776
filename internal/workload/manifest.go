package workload

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verilab/harnessctl/internal/config"
)

// RunManifest is an audit record of one service execution.
type RunManifest struct {
	RunID         string            `json:"run_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Service       string            `json:"service"`
	Image         string            `json:"image,omitempty"`
	ExitCode      int               `json:"exit_code"`
	Duration      string            `json:"duration"`
	LibraryHashes map[string]string `json:"library_hashes,omitempty"`
}

// NewManifest creates a run manifest for a completed service execution.
func NewManifest(svc config.Service, exitCode int, duration time.Duration) *RunManifest {
	return &RunManifest{
		RunID:         uuid.NewString(),
		Timestamp:     time.Now(),
		Service:       svc.Name,
		Image:         svc.Image,
		ExitCode:      exitCode,
		Duration:      duration.String(),
		LibraryHashes: make(map[string]string),
	}
}

// AddLibraryHash records the SHA-256 of an injected library file, keyed by
// its destination path.
func (m *RunManifest) AddLibraryHash(path string) error {
	hash, err := hashFile(path)
	if err != nil {
		return err
	}
	m.LibraryHashes[path] = hash
	return nil
}

// SaveManifest writes a run manifest to dir, creating it if needed.
func SaveManifest(manifest *RunManifest, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json",
		manifest.Timestamp.Format("20060102_150405"),
		manifest.Service)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
