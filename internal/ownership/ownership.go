// Package ownership decides whether a requester may mutate a resource.
package ownership

import (
	"strings"

	"github.com/google/uuid"

	"github.com/sujalbistaa/drumfeed/internal/common"
)

// Normalize returns the canonical text form of an id. Token claims and
// stored rows may encode the same uuid differently (case, braces, urn
// prefix); anything that is not a uuid is compared trimmed and lower-cased.
func Normalize(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return strings.ToLower(id)
}

// Same reports whether two ids refer to the same entity.
func Same(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Authorize returns nil when requesterID owns the resource, ErrForbidden
// otherwise. An empty requester is unauthenticated rather than forbidden.
func Authorize(ownerID, requesterID string) error {
	if Normalize(requesterID) == "" {
		return common.ErrUnauthenticated
	}
	if !Same(ownerID, requesterID) {
		return common.ErrForbidden
	}
	return nil
}
