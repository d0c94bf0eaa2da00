package main

import (
	"fmt"
	"time"

	"github.com/alnah/go-page2lms/internal/fileutil"
	"github.com/alnah/go-page2lms/internal/yamlutil"
)

// reportPermissions is the mode of the written report.
const reportPermissions = 0o644

// exportReport is the YAML document written by --report.
type exportReport struct {
	GeneratedAt time.Time     `yaml:"generatedAt"`
	Exports     []reportEntry `yaml:"exports"`
}

// reportEntry describes one page of the run.
type reportEntry struct {
	URL         string            `yaml:"url"`
	Output      string            `yaml:"output,omitempty"`
	Error       string            `yaml:"error,omitempty"`
	MainFound   bool              `yaml:"mainFound"`
	Duration    string            `yaml:"duration"`
	Stylesheets []stylesheetEntry `yaml:"stylesheets,omitempty"`
}

// stylesheetEntry is one linked stylesheet and how its fetch went.
type stylesheetEntry struct {
	URL    string `yaml:"url"`
	Status int    `yaml:"status,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

// buildReport converts batch results into the report document.
func buildReport(results []exportResult, now time.Time) *exportReport {
	rep := &exportReport{
		GeneratedAt: now.UTC(),
		Exports:     make([]reportEntry, 0, len(results)),
	}

	for _, r := range results {
		entry := reportEntry{
			URL:      r.URL,
			Duration: r.Duration.Round(time.Millisecond).String(),
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			rep.Exports = append(rep.Exports, entry)
			continue
		}

		entry.Output = r.OutputPath
		if r.Report != nil {
			entry.MainFound = r.Report.MainFound
			for _, s := range r.Report.Stylesheets {
				se := stylesheetEntry{URL: s.URL, Status: s.Status}
				if s.Err != nil {
					se.Error = s.Err.Error()
				}
				entry.Stylesheets = append(entry.Stylesheets, se)
			}
		}
		rep.Exports = append(rep.Exports, entry)
	}

	return rep
}

// writeReport writes the YAML report for results to path.
func writeReport(path string, results []exportResult, now time.Time) error {
	data, err := yamlutil.Marshal(buildReport(results, now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, reportPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	return nil
}
