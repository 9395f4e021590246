package asset

import (
	"errors"
	"fmt"
)

// ErrModelLoad is matched by every asset fetch or parse failure.
var ErrModelLoad = errors.New("asset: model failed to load")

// LoadError carries the asset reference and the original cause.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("asset: load %s: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrModelLoad) hold for every LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrModelLoad }

func loadErr(ref string, err error) error {
	return &LoadError{Ref: ref, Err: err}
}
