// Package workload runs a data point's services as Docker Compose
// containers. Docker is an opaque job executor here: the harness cares only
// about per-service exit codes, never about what the workload does inside.
package workload

import (
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/verilab/harnessctl/internal/config"
	"github.com/verilab/harnessctl/internal/errors"
	"github.com/verilab/harnessctl/internal/log"
)

// In-container mount points for the two read-only library directories.
const (
	libMount  = "/pylib"
	subjMount = "/pysubj"
)

// commandFunc runs one external command, streaming its output, and returns
// the process exit code. A non-nil error means the command could not be
// invoked at all; a nonzero exit code is not an error.
type commandFunc func(name string, args ...string) (int, error)

// RefreshOutcome is the explicit result of an image refresh attempt. A
// skipped refresh is never fatal: the authoritative failure signal comes
// from actually running the service.
type RefreshOutcome struct {
	Refreshed bool
	Reason    string
}

// Runner executes the services of one data point.
type Runner struct {
	composeFile string
	layout      config.Layout
	secret      string
	manifestDir string
	libraryPins []string
	logger      *log.Logger
	run         commandFunc
}

// NewRunner returns a Runner bound to one data point's compose file. secret
// is forwarded into containers only when non-empty. When manifestDir is
// non-empty a JSON run manifest is written per service; libraryPins names
// injected files whose hashes the manifest records.
func NewRunner(composeFile string, layout config.Layout, secret, manifestDir string, libraryPins []string, logger *log.Logger) *Runner {
	return &Runner{
		composeFile: composeFile,
		layout:      layout,
		secret:      secret,
		manifestDir: manifestDir,
		libraryPins: libraryPins,
		logger:      logger,
		run:         runCommand,
	}
}

// EnsureImage refreshes a service's image: a pull when the service names a
// published image, otherwise a no-cache rebuild with the latest base layers.
func (r *Runner) EnsureImage(svc config.Service) RefreshOutcome {
	r.logger.Info("updating docker image", "service", svc.Name)

	var code int
	var err error
	if svc.HasImage() {
		code, err = r.run("docker", "pull", svc.Image)
	} else {
		code, err = r.run("docker", "compose", "-f", r.composeFile, "build", "--pull", "--no-cache", svc.Name)
	}

	switch {
	case err != nil:
		return RefreshOutcome{Reason: fmt.Sprintf("could not invoke docker: %v", err)}
	case code != 0:
		return RefreshOutcome{Reason: fmt.Sprintf("docker exited with code %d", code)}
	}
	return RefreshOutcome{Refreshed: true}
}

// Run executes one service with the fixed mount set and returns its exit
// code. The returned error is an invocation fault: docker itself could not
// be run. A service that runs and fails reports through the exit code.
func (r *Runner) Run(svc config.Service) (int, error) {
	r.logger.Info("starting service", "service", svc.Name)

	started := time.Now()
	code, err := r.run("docker", r.composeRunArgs(svc.Name)...)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvocationFault,
			fmt.Sprintf("run service %s", svc.Name), err)
	}

	if r.manifestDir != "" {
		r.writeManifest(svc, code, time.Since(started))
	}
	return code, nil
}

// composeRunArgs assembles the full `docker compose run` argument list:
// tracked directories and the run directory read-write under the container
// root, the two library directories read-only, a fixed working directory,
// and the secret only when present.
func (r *Runner) composeRunArgs(service string) []string {
	args := []string{"compose", "-f", r.composeFile, "run"}

	mounted := append(append([]string{}, r.layout.TrackedDirs...), r.layout.RunDir)
	for _, dir := range mounted {
		args = append(args, "-v", fmt.Sprintf("%s/%s:%s/%s", r.layout.Root, dir, r.layout.ContainerRoot, dir))
	}
	args = append(args,
		"-v", fmt.Sprintf("%s:%s:ro", r.layout.LibDir, libMount),
		"-v", fmt.Sprintf("%s:%s:ro", r.layout.SubjDir, subjMount),
	)

	args = append(args, "--rm", "--build", "-w", r.layout.WorkDir())

	if r.secret != "" {
		args = append(args, "--env", config.EnvSecret+"="+r.secret)
	}

	return append(args, service)
}

func (r *Runner) writeManifest(svc config.Service, exitCode int, duration time.Duration) {
	manifest := NewManifest(svc, exitCode, duration)
	for _, path := range r.libraryPins {
		if err := manifest.AddLibraryHash(path); err != nil {
			r.logger.WithError(err).Warn("hash injected file for manifest", "path", path)
		}
	}
	if err := SaveManifest(manifest, r.manifestDir); err != nil {
		r.logger.WithError(err).Warn("save run manifest", "service", svc.Name)
	}
}

// DockerAvailable checks that docker is on PATH.
func DockerAvailable() error {
	if _, err := exec.LookPath("docker"); err != nil {
		return errors.Wrap(errors.ErrCodeToolMissing, "docker not found in PATH", err)
	}
	return nil
}

func runCommand(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}
