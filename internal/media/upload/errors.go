package upload

import (
	"fmt"
)

// Constraint names the validation rule a file broke.
type Constraint string

const (
	ConstraintType  Constraint = "type"
	ConstraintSize  Constraint = "size"
	ConstraintCount Constraint = "count"
)

// ValidationError rejects a whole batch before any network call.
type ValidationError struct {
	Index      int
	Name       string
	Constraint Constraint
	Detail     string
}

func (e *ValidationError) Error() string {
	if e.Constraint == ConstraintCount {
		return fmt.Sprintf("invalid upload batch: %s", e.Detail)
	}
	return fmt.Sprintf("invalid file %d (%s): %s", e.Index, e.Name, e.Detail)
}

// UploadError reports the first failed upload of a batch. Orphaned holds the
// references that did reach the host; nothing was attached to a gallery.
type UploadError struct {
	Index    int
	Name     string
	Orphaned []string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of file %d (%s) failed: %v", e.Index, e.Name, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
