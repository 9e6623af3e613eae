package workshop

import "errors"

// ErrNoProvider is returned when no completion credentials are configured.
var ErrNoProvider = errors.New("workshop: no completion provider configured")
