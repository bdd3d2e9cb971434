package common

import (
	"fmt"

	"go.uber.org/multierr"
)

// Status is the outcome of processing one section folder
type Status int

const (
	StatusDone Status = iota
	StatusUnchanged
	StatusMissing
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusUnchanged:
		return "unchanged"
	case StatusMissing:
		return "missing"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome for a single file
type Result struct {
	Source  string
	Seq     int
	Outputs []string
	Err     error
}

// OK reports whether the file was processed without error
func (r Result) OK() bool {
	return r.Err == nil
}

// SectionReport collects per-file results for one section folder
type SectionReport struct {
	Section string
	Path    string
	Status  Status
	Results []Result

	// FolderErr is set when the section as a whole could not be processed
	FolderErr error
}

// Fail marks the whole section failed
func (r *SectionReport) Fail(err error) {
	r.Status = StatusFailed
	r.FolderErr = err
}

// Add appends a file result
func (r *SectionReport) Add(res Result) {
	r.Results = append(r.Results, res)
}

// Failed returns the results that carry an error
func (r *SectionReport) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err combines the folder error and every file error, or returns nil
func (r *SectionReport) Err() error {
	err := r.FolderErr
	for _, res := range r.Results {
		if res.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", res.Source, res.Err))
		}
	}
	return err
}

// Summary counts sections by status and files that failed across reports
type Summary struct {
	Sections    int
	Done        int
	Unchanged   int
	Missing     int
	Failed      int
	Files       int
	FailedFiles int
}

// Summarize tallies a run
func Summarize(reports []SectionReport) Summary {
	var s Summary
	for i := range reports {
		r := &reports[i]
		s.Sections++
		switch r.Status {
		case StatusDone:
			s.Done++
		case StatusUnchanged:
			s.Unchanged++
		case StatusMissing:
			s.Missing++
		case StatusFailed:
			s.Failed++
		}
		s.Files += len(r.Results)
		s.FailedFiles += len(r.Failed())
	}
	return s
}

// Errors combines the errors of every report
func Errors(reports []SectionReport) error {
	var err error
	for i := range reports {
		if e := reports[i].Err(); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", reports[i].Section, e))
		}
	}
	return err
}
