package service

import (
	"fmt"

	"whiskr/internal/auth"
)

// authorizeOwner allows the operation only when the requester is the resource owner.
func authorizeOwner(requester auth.Identity, ownerID string) error {
	if requester.ID == "" || requester.ID != ownerID {
		return fmt.Errorf("%w: resource belongs to another user", ErrForbidden)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
