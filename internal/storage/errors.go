package storage

import (
	"fmt"

	"github.com/kstarfusion/delta/internal/deltaerr"
)

func unknownBackendError(backend string) error {
	return deltaerr.NewConfigError(fmt.Sprintf("storage.backend %q is not one of numpy, mongo, null", backend))
}
