package services

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn   = errors.New("missing column")
	ErrSampleTooLarge  = errors.New("sample larger than dataset")
	ErrEmptyDataset    = errors.New("no data rows")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// FileError reports a dataset that cannot be read or has malformed columns.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("dataset %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ParseError reports a Date value that is not day-month-year. Row is the
// zero-based position in the filtered table.
type ParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: date %q is not day-month-year: %v", e.Row, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
