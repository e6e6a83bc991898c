package fetch

import (
	"errors"

	storeerrors "github.com/iamNilotpal/warcstore/pkg/errors"
)

// isFatal reports whether err means the store accepts no more appends.
func isFatal(err error) bool {
	if errors.Is(err, storeerrors.ErrStoreClosed) {
		return true
	}

	var se *storeerrors.StoreError
	return errors.As(err, &se) && se.IsFatal()
}
