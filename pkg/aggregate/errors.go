package aggregate

import "fmt"

// NotFoundError reports a referenced entity that does not exist upstream.
// It names the entity kind and ID so the dispatcher can tell the caller
// exactly which reference was dangling.
type NotFoundError struct {
	EntityKind string
	ID         string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.EntityKind, e.ID)
}
