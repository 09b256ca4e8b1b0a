// Package etag converts stream revisions to and from their weak-ETag wire
// form. The numeric revision stays authoritative; the string form exists
// only at the HTTP boundary.
package etag

import (
	"fmt"
	"regexp"

	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
	"github.com/fairyhunter13/shopping-cart-service/internal/validate"
)

var weakETagRe = regexp.MustCompile(`^W/"(\d+)"$`)

// FromRevision formats a revision as a weak ETag, e.g. W/"42".
func FromRevision(rev eventstore.Revision) string {
	return fmt.Sprintf(`W/"%d"`, rev)
}

// ToExpectedRevision parses an If-Match header value into the expected
// revision. An absent header and a malformed tag are distinct validation
// failures; a well-formed tag must wrap a non-negative integer.
func ToExpectedRevision(ifMatch string) (eventstore.Revision, error) {
	if ifMatch == "" {
		return 0, validate.NewValidationError(validate.CodeMissingIfMatch)
	}
	m := weakETagRe.FindStringSubmatch(ifMatch)
	if m == nil {
		return 0, validate.NewValidationError(validate.CodeWrongWeakETagFormat)
	}
	n, err := validate.AssertUnsignedInteger(m[1])
	if err != nil {
		return 0, err
	}
	return eventstore.Revision(n), nil
}
