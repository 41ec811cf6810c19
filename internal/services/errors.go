package services

import "fmt"

// DuplicateNameError reports a table or network name already used in a
// workspace. It is surfaced to the caller before any task is enqueued where
// possible.
type DuplicateNameError struct {
	Kind      string
	Name      string
	Workspace string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %s in workspace %s already exists", e.Kind, e.Name, e.Workspace)
}
