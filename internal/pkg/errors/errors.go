package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")

	ErrArchiveUnreadable       = errors.New("archive unreadable")
	ErrArchiveExtractionFailed = errors.New("archive extraction failed")
	ErrManifestMissing         = errors.New("manifest missing")
	ErrManifestMalformed       = errors.New("manifest malformed")
	ErrManifestMixedKinds      = fmt.Errorf("%w: records mix item and experiment shapes", ErrManifestMalformed)
	ErrInvalidRecord           = errors.New("invalid record")
	ErrPersistenceFailed       = errors.New("persistence failed")
	ErrCleanup                 = errors.New("cleanup failed")
)

// Phase names the pipeline stage an ImportError was raised in.
type Phase string

const (
	PhaseValidate Phase = "validate"
	PhaseExtract  Phase = "extract"
	PhaseManifest Phase = "manifest"
	PhaseImport   Phase = "import"
)

// ImportError is the single terminal error of an aborted import.
// Position is the manifest index of the failing record, or -1.
type ImportError struct {
	Phase    Phase
	Position int
	Title    string
	Err      error
}

func (e *ImportError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s: record %d (%q): %v", e.Phase, e.Position, e.Title, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsInvalidRecord(err error) bool {
	return errors.Is(err, ErrInvalidRecord)
}
