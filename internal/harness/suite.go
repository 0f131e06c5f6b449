package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SuiteResult summarizes a run over a set of scenario files.
type SuiteResult struct {
	Scenarios int               `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Failures  []ScenarioFailure `json:"failures,omitempty"`
}

// Pass reports whether every scenario in the suite passed.
func (s *SuiteResult) Pass() bool {
	return s.Failed == 0
}

// ScenarioFailure describes one failed scenario.
type ScenarioFailure struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Errors []string `json:"errors"`
}

// DiscoverScenarios resolves a scenario path to the list of scenario
// files it names. A directory yields its .yaml and .yml entries in
// sorted order; a file yields itself.
func DiscoverScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat scenario path: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", path)
	}
	return files, nil
}

// RunSuite loads and runs every scenario file and aggregates the
// results. Load failures, execution failures, and assertion failures
// all count as failed scenarios; the suite keeps going so one broken
// scenario doesn't hide the rest.
func RunSuite(paths []string) *SuiteResult {
	suite := &SuiteResult{}

	for _, path := range paths {
		suite.Scenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Name:   filepath.Base(path),
				Path:   path,
				Errors: []string{err.Error()},
			})
			continue
		}

		result, err := Run(scenario)
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Name:   scenario.Name,
				Path:   path,
				Errors: []string{err.Error()},
			})
			continue
		}

		if !result.Pass {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Name:   scenario.Name,
				Path:   path,
				Errors: result.Errors,
			})
			continue
		}

		suite.Passed++
	}

	return suite
}
