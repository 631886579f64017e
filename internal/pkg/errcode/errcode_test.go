package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: OK},
		{name: "plain", err: errors.New("x"), want: ErrUnknown},
		{name: "unreadable", err: fmt.Errorf("%w: bad", appErr.ErrArchiveUnreadable), want: ErrArchiveUnreadable},
		{name: "mixed kinds", err: appErr.ErrManifestMixedKinds, want: ErrManifestMalformed},
		{name: "import error", err: &appErr.ImportError{Phase: appErr.PhaseImport, Position: 2, Err: appErr.ErrPersistenceFailed}, want: ErrPersistenceFailed},
		{name: "invalid record", err: &appErr.ImportError{Phase: appErr.PhaseImport, Err: appErr.ErrInvalidRecord}, want: ErrInvalidRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FromError(tt.err))
		})
	}
}
