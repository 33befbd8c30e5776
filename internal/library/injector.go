// Package library injects externally supplied artifacts into the tracked
// tree for the duration of a run. Mappings come from a shared export
// registry keyed by data point ID.
package library

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/verilab/harnessctl/internal/errors"
	"github.com/verilab/harnessctl/internal/log"
)

// Mapping is one (source, destination) pair. Source lives outside the
// tracked tree; Dest is a tracked path the harness owns for the run.
type Mapping struct {
	Source string
	Dest   string
}

// The export registry document:
//
//	export:
//	  - 7:
//	      - context:
//	          - harness/lib/axi_checker.py: verification/axi_checker.py
type registryDoc struct {
	Export []map[int][]exportEntry `yaml:"export"`
}

type exportEntry struct {
	Context []map[string]string `yaml:"context"`
}

// Resolve looks up the mappings for a data point in the export registry.
// A missing registry file or an ID with no entry means zero injections,
// not an error.
func Resolve(id int, registryPath string) ([]Mapping, error) {
	data, err := os.ReadFile(registryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeRegistryInvalid,
			fmt.Sprintf("read export registry %s", registryPath), err)
	}

	var doc registryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRegistryInvalid,
			fmt.Sprintf("unmarshal export registry %s", registryPath), err)
	}

	var mappings []Mapping
	for _, issue := range doc.Export {
		entries, ok := issue[id]
		if !ok || len(entries) == 0 {
			continue
		}
		for _, pair := range entries[0].Context {
			if len(pair) != 1 {
				return nil, errors.Newf(errors.ErrCodeRegistryInvalid,
					"export registry entry for %d: context mappings must be single-key", id)
			}
			for src, dst := range pair {
				mappings = append(mappings, Mapping{Source: src, Dest: dst})
			}
		}
	}
	return mappings, nil
}

// Inject copies every source file to its destination, overwriting. The
// destinations land in tracked directories, so the tree's change detection
// will see them; Cleanup removes them again after the run.
func Inject(mappings []Mapping, logger *log.Logger) error {
	for _, m := range mappings {
		logger.Info("copying file from external library", "source", m.Source, "dest", m.Dest)
		if err := copyFile(m.Source, m.Dest); err != nil {
			return errors.Wrap(errors.ErrCodeInjectFailed,
				fmt.Sprintf("inject %s -> %s", m.Source, m.Dest), err)
		}
	}
	return nil
}

// Cleanup deletes every injected destination. It runs on every exit path of
// a run, so it tolerates everything: a missing file is a no-op and any other
// failure is logged without stopping the remaining deletions.
func Cleanup(mappings []Mapping, logger *log.Logger) {
	for _, m := range mappings {
		err := os.Remove(m.Dest)
		switch {
		case err == nil:
			logger.Debug("removed injected file", "dest", m.Dest)
		case os.IsNotExist(err):
			logger.Debug("injected file already absent", "dest", m.Dest)
		default:
			logger.WithError(err).Warn("remove injected file", "dest", m.Dest)
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
