package harness

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/verilab/harnessctl/internal/errors"
	"github.com/verilab/harnessctl/internal/log"
)

// evaluator runs one data point to completion.
type evaluator interface {
	Evaluate(id int) error
}

// BatchDriver iterates the orchestrator over one or all data points. One
// data point's fault, even a fatal one, never stops a batch: the failure
// is counted and the next ID is attempted.
type BatchDriver struct {
	orch       evaluator
	harnessDir string
	logger     *log.Logger
}

// NewBatchDriver returns a driver discovering data points under harnessDir.
func NewBatchDriver(orch *Orchestrator, harnessDir string, logger *log.Logger) *BatchDriver {
	return &BatchDriver{orch: orch, harnessDir: harnessDir, logger: logger}
}

// RunOne evaluates a single data point, surfacing its error directly.
func (d *BatchDriver) RunOne(id int) error {
	return d.orch.Evaluate(id)
}

// RunAll discovers and evaluates every data point, returning how many
// failed out of how many were attempted.
func (d *BatchDriver) RunAll() (failed, total int, err error) {
	ids, err := DiscoverIDs(d.harnessDir)
	if err != nil {
		return 0, 0, err
	}

	for _, id := range ids {
		if err := d.orch.Evaluate(id); err != nil {
			failed++
			if errors.IsVerificationFailure(err) {
				d.logger.WithError(err).Error("data point failed", "data_point", id)
			} else {
				d.logger.WithError(err).Error("data point aborted", "data_point", id)
			}
		}
	}
	return failed, len(ids), nil
}

// DiscoverIDs scans dir for numerically-named subdirectories and returns
// their IDs in ascending order. Non-numeric entries and plain files are
// ignored.
func DiscoverIDs(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrCodeConfigNotFound, "harness directory not found: %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("scan %s", dir), err)
	}

	var ids []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
