package cache

import (
	"github.com/matzehuels/beerxml/pkg/errors"
)

// backendError wraps a storage failure as BACKEND_UNAVAILABLE.
func backendError(backend, op string, err error) error {
	return errors.Wrap(errors.ErrCodeBackendUnavailable, err, "%s cache %s", backend, op)
}

// IsBackendUnavailable reports whether err is a storage failure.
func IsBackendUnavailable(err error) bool {
	return errors.Has(err, errors.ErrCodeBackendUnavailable)
}
