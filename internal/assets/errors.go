package assets

import "errors"

// ErrNotFound is returned when an asset id does not exist in the catalog.
var ErrNotFound = errors.New("asset not found")

// ErrDuplicatePath is returned when registering a source path that is
// already cataloged.
var ErrDuplicatePath = errors.New("source path already registered")
