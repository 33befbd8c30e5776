// Package vcs wraps git as the tree snapshot/restore primitive. The harness
// never interprets repository state; it only pins tracked directories to a
// revision and discards their changes afterwards.
package vcs

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/verilab/harnessctl/internal/errors"
	"github.com/verilab/harnessctl/internal/log"
)

// gitFunc runs one git invocation rooted at dir. Split out so tests can
// observe and fail invocations without a real repository.
type gitFunc func(dir string, args ...string) error

// Tree pins and restores a fixed set of tracked directories.
type Tree struct {
	root   string
	dirs   []string
	logger *log.Logger
	git    gitFunc
}

// NewTree returns a Tree operating on the given tracked directories,
// which are interpreted relative to root.
func NewTree(root string, dirs []string, logger *log.Logger) *Tree {
	return &Tree{
		root:   root,
		dirs:   dirs,
		logger: logger,
		git:    runGit,
	}
}

// Pin checks out the given revision for exactly the tracked directories,
// leaving the rest of the tree untouched. A failed checkout is not a usable
// state; callers must route through Restore on every exit path after calling
// Pin.
func (t *Tree) Pin(revision string) error {
	if revision == "" {
		return errors.New(errors.ErrCodeRevisionMissing, "no revision to pin the tracked tree to")
	}

	for _, dir := range t.dirs {
		if err := t.git(t.root, "checkout", revision, "--", dir); err != nil {
			return errors.Wrap(errors.ErrCodeCheckoutFailed,
				fmt.Sprintf("checkout %s for %s", revision, dir), err)
		}
	}

	t.logger.Info("pinned tracked directories", "revision", revision, "dirs", t.dirs)
	return nil
}

// Restore unconditionally discards staged and unstaged changes in the
// tracked directories, returning them to the committed state. Safe to call
// when Pin never ran, and safe to call twice: a directory with nothing to
// revert is a no-op. Per-directory failures are logged and never escalate,
// so one bad directory cannot block the rest of the recovery path.
func (t *Tree) Restore() {
	for _, dir := range t.dirs {
		if err := t.git(t.root, "restore", "--staged", dir); err != nil {
			t.logger.WithError(err).Warn("unstage during restore", "dir", dir)
		}
		if err := t.git(t.root, "checkout", "--", dir); err != nil {
			t.logger.WithError(err).Warn("discard changes during restore", "dir", dir)
		}
	}
	t.logger.Info("restored tracked directories", "dirs", t.dirs)
}

// GitAvailable checks that git is on PATH.
func GitAvailable() error {
	if _, err := exec.LookPath("git"); err != nil {
		return errors.Wrap(errors.ErrCodeToolMissing, "git not found in PATH", err)
	}
	return nil
}

func runGit(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
