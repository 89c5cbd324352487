package datasource

import "errors"

// ErrFunctionNotFound reports that the backend does not expose a requested
// remote procedure. Callers use it to pick a fallback strategy instead of
// treating the call as a hard failure.
var ErrFunctionNotFound = errors.New("function not found")

// ErrNotFound reports that a filtered query matched no rows where exactly one
// was expected.
var ErrNotFound = errors.New("not found")
