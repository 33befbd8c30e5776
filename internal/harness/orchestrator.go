// Package harness is the orchestration core: for one data point it mutates
// the working tree (library injection, revision pin), runs the declared
// services, and unconditionally restores the tree on every exit path.
package harness

import (
	"fmt"
	"os"

	"github.com/verilab/harnessctl/internal/config"
	"github.com/verilab/harnessctl/internal/errors"
	"github.com/verilab/harnessctl/internal/library"
	"github.com/verilab/harnessctl/internal/log"
	"github.com/verilab/harnessctl/internal/vcs"
	"github.com/verilab/harnessctl/internal/workload"
)

// treeSnapshot pins tracked directories to a revision and discards their
// changes. Restore never escalates: it is the recovery path.
type treeSnapshot interface {
	Pin(revision string) error
	Restore()
}

// serviceRunner executes one data point's services.
type serviceRunner interface {
	EnsureImage(svc config.Service) workload.RefreshOutcome
	Run(svc config.Service) (int, error)
}

// RunResult is the explicit outcome of the run phase. Exactly one of the
// two failure signals is populated: Fault means the runner could not be
// invoked and remaining services were skipped; Failures counts services
// that ran and exited nonzero.
type RunResult struct {
	Failures int
	Fault    error
}

// Orchestrator evaluates data points one at a time.
type Orchestrator struct {
	settings    config.Settings
	layout      config.Layout
	manifestDir string
	logger      *log.Logger

	tree      treeSnapshot
	newRunner func(composeFile, secret string, libraryPins []string) serviceRunner
	preflight func() error
}

// New wires an Orchestrator against the real git tree and docker runner.
func New(settings config.Settings, layout config.Layout, manifestDir string, logger *log.Logger) *Orchestrator {
	o := &Orchestrator{
		settings:    settings,
		layout:      layout,
		manifestDir: manifestDir,
		logger:      logger,
		tree:        vcs.NewTree(layout.Root, layout.TrackedDirs, logger),
	}
	o.newRunner = func(composeFile, secret string, libraryPins []string) serviceRunner {
		return workload.NewRunner(composeFile, layout, secret, manifestDir, libraryPins, logger)
	}
	o.preflight = func() error {
		if err := workload.DockerAvailable(); err != nil {
			return err
		}
		return vcs.GitAvailable()
	}
	return o
}

// Evaluate runs one data point to completion. It returns nil when every
// service passed, a VERIFY error when at least one service exited nonzero,
// and a configuration or invocation error otherwise. Whatever the outcome,
// injected files are removed and, when checkout is enabled, the tracked
// directories are restored before Evaluate returns.
func (o *Orchestrator) Evaluate(id int) error {
	logger := o.logger.With("data_point", id)

	envPath := o.layout.EnvPath(id)
	logger.Debug("searching for .env file", "path", envPath)
	if err := config.LoadDotenv(envPath); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("load %s", envPath), err)
	}
	settings := o.runSettings()

	cfg, err := config.LoadHarnessConfig(o.layout.ComposePath(id))
	if err != nil {
		return err
	}

	mappings, err := library.Resolve(id, o.layout.RegistryPath)
	if err != nil {
		return err
	}
	if len(mappings) == 0 {
		logger.Info("no external library link for this data point")
	}

	if err := o.preflight(); err != nil {
		return err
	}
	if settings.CheckoutEnabled && settings.Revision == "" {
		return errors.New(errors.ErrCodeRevisionMissing,
			"checkout requested but no revision identifier is available (set "+config.EnvRevision+")")
	}

	// Guaranteed recovery path: every return from here on removes the
	// injected files, and restores the tree once a pin has been attempted.
	restoreTree := false
	defer func() {
		if restoreTree {
			logger.Info("restoring to previous context")
			o.tree.Restore()
		}
		library.Cleanup(mappings, logger)
	}()

	if err := library.Inject(mappings, logger); err != nil {
		return err
	}

	if settings.CheckoutEnabled {
		restoreTree = true
		if err := o.tree.Pin(settings.Revision); err != nil {
			return err
		}
	} else {
		logger.Info("checkout disabled, using on-disk tree contents")
	}

	runner := o.newRunner(o.layout.ComposePath(id), settings.Secret, destinations(mappings))
	result := o.runServices(runner, cfg.Services, logger)

	switch {
	case result.Fault != nil:
		return errors.Wrap(errors.ErrCodeInvocationFault,
			fmt.Sprintf("unable to safely run all services for data point %d", id), result.Fault)
	case result.Failures > 0:
		return errors.Newf(errors.ErrCodeVerificationFailed,
			"at least one harness service failed for data point %d", id)
	}

	logger.Info("all harness services passed")
	return nil
}

// runServices attempts every service in declaration order. A nonzero exit
// is counted and the loop continues; a fault invoking the runner aborts the
// remaining services immediately.
func (o *Orchestrator) runServices(runner serviceRunner, services []config.Service, logger *log.Logger) RunResult {
	var result RunResult
	for _, svc := range services {
		if outcome := runner.EnsureImage(svc); !outcome.Refreshed {
			logger.Warn("could not update image, run will surface the real failure",
				"service", svc.Name, "reason", outcome.Reason)
		}

		code, err := runner.Run(svc)
		if err != nil {
			result.Fault = err
			return result
		}
		if code != 0 {
			logger.Warn("service failed", "service", svc.Name, "exit_code", code)
			result.Failures++
		}
	}
	return result
}

// runSettings resolves the effective per-run settings. Explicitly supplied
// values win; empty ones fall back to the environment so a data point's
// .env file can provide them.
func (o *Orchestrator) runSettings() config.Settings {
	settings := o.settings
	if settings.Revision == "" {
		settings.Revision = os.Getenv(config.EnvRevision)
	}
	if settings.Secret == "" {
		settings.Secret = os.Getenv(config.EnvSecret)
	}
	return settings
}

func destinations(mappings []library.Mapping) []string {
	dests := make([]string, 0, len(mappings))
	for _, m := range mappings {
		dests = append(dests, m.Dest)
	}
	return dests
}
