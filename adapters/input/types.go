package input

import (
	"fmt"

	"ssea/domain/core"
)

// FileType is the detected layout of a weights file
type FileType string

const (
	FileTSV  FileType = "tsv"
	FileCSV  FileType = "csv"
	FileXLSX FileType = "xlsx"
)

// ParseError reports a malformed line in an input file. Line is 1-based.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

// Unwrap lets parse failures match core.ErrMalformedInput
func (e *ParseError) Unwrap() error {
	return core.ErrMalformedInput
}

func parseErrorf(file string, line int, format string, args ...interface{}) *ParseError {
	return &ParseError{File: file, Line: line, Reason: fmt.Sprintf(format, args...)}
}

// Weights is a parsed weights table in file order
type Weights struct {
	Samples []string
	Weights []float64
}

// Len returns the number of rows
func (w Weights) Len() int {
	return len(w.Samples)
}
