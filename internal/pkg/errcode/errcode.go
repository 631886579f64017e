package errcode

import (
	"errors"

	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
)

// Process exit codes of the labimport command.
const (
	OK = iota
	ErrUnknown
	ErrInvalid
	ErrArchiveUnreadable
	ErrArchiveExtractionFailed
	ErrManifestMissing
	ErrManifestMalformed
	ErrInvalidRecord
	ErrPersistenceFailed
)

var table = []struct {
	err  error
	code int
}{
	{appErr.ErrInvalid, ErrInvalid},
	{appErr.ErrArchiveUnreadable, ErrArchiveUnreadable},
	{appErr.ErrArchiveExtractionFailed, ErrArchiveExtractionFailed},
	{appErr.ErrManifestMissing, ErrManifestMissing},
	{appErr.ErrManifestMalformed, ErrManifestMalformed},
	{appErr.ErrInvalidRecord, ErrInvalidRecord},
	{appErr.ErrPersistenceFailed, ErrPersistenceFailed},
}

func FromError(err error) int {
	if err == nil {
		return OK
	}
	for _, item := range table {
		if errors.Is(err, item.err) {
			return item.code
		}
	}
	return ErrUnknown
}
