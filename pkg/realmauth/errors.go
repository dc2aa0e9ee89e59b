package realmauth

import "fmt"

// AccessNotFoundError reports an access ID that is not in the current
// context. SetActiveAccess signals this case with ok == false; callers that
// need an error value wrap it in this type.
type AccessNotFoundError struct {
	ID string
}

func (e *AccessNotFoundError) Error() string {
	return fmt.Sprintf("access %q not found in the current context", e.ID)
}
