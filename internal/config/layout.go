package config

import (
	"path/filepath"
	"strconv"
)

// Layout names the fixed on-disk structure the harness operates on. The
// tracked directories are a fixed set, not discovered: they are the only
// directories the orchestrator may mutate and must restore.
type Layout struct {
	// Root is the working tree root all other paths are relative to.
	Root string

	// HarnessDir holds one numerically-named subdirectory per data point.
	HarnessDir string

	// TrackedDirs are the revision-controlled directories pinned and
	// restored around every run.
	TrackedDirs []string

	// RunDir is the read-write scratch directory shared by services.
	RunDir string

	// LibDir and SubjDir are mounted read-only into every service.
	LibDir  string
	SubjDir string

	// RegistryPath locates the library export registry.
	RegistryPath string

	// ContainerRoot is where tracked directories appear inside containers.
	ContainerRoot string
}

// DefaultLayout returns the standard layout rooted at root.
func DefaultLayout(root string) Layout {
	return Layout{
		Root:          root,
		HarnessDir:    filepath.Join(root, "harness"),
		TrackedDirs:   []string{"rtl", "docs", "verification"},
		RunDir:        "rundir",
		LibDir:        filepath.Join(root, "harness", "lib"),
		SubjDir:       filepath.Join(root, "harness", "subj"),
		RegistryPath:  filepath.Join(root, "library", "export.yml"),
		ContainerRoot: "/code",
	}
}

// ComposePath returns the compose file path for a data point.
func (l Layout) ComposePath(id int) string {
	return filepath.Join(l.HarnessDir, strconv.Itoa(id), "docker-compose.yml")
}

// EnvPath returns the optional per-data-point .env path.
func (l Layout) EnvPath(id int) string {
	return filepath.Join(l.HarnessDir, strconv.Itoa(id), "src", ".env")
}

// WorkDir returns the in-container working directory for services.
func (l Layout) WorkDir() string {
	return l.ContainerRoot + "/" + l.RunDir
}
