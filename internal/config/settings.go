package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consumed by the harness.
const (
	// EnvRevision names the commit the tracked tree is pinned to for a run.
	EnvRevision = "HASH"

	// EnvSecret is forwarded into service containers only when non-empty.
	EnvSecret = "OPENAI_USER_KEY"
)

// Settings is the explicit per-process run configuration. It replaces
// ambient environment reads inside the orchestrator so the core is testable
// without touching process state.
type Settings struct {
	// Revision is the commit to pin the tracked tree to. Required when
	// CheckoutEnabled; ignored otherwise.
	Revision string

	// Secret is an optional credential forwarded into service containers.
	Secret string

	// CheckoutEnabled controls the pin/restore cycle. When false the run
	// uses whatever is on disk and never touches git.
	CheckoutEnabled bool
}

// SettingsFromEnv snapshots the environment into a Settings value.
// Call after LoadDotenv so per-data-point .env files are visible.
func SettingsFromEnv(checkoutEnabled bool) Settings {
	return Settings{
		Revision:        os.Getenv(EnvRevision),
		Secret:          os.Getenv(EnvSecret),
		CheckoutEnabled: checkoutEnabled,
	}
}

// LoadDotenv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is fine: most
// data points carry no .env.
func LoadDotenv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}
