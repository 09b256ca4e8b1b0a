package etag

import (
	"testing"

	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
	"github.com/fairyhunter13/shopping-cart-service/internal/validate"
)

func TestFromRevision(t *testing.T) {
	if got := FromRevision(42); got != `W/"42"` {
		t.Fatalf("unexpected etag: %s", got)
	}
	if got := FromRevision(0); got != `W/"0"` {
		t.Fatalf("unexpected etag: %s", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, rev := range []eventstore.Revision{0, 1, 42, 1 << 40} {
		got, err := ToExpectedRevision(FromRevision(rev))
		if err != nil {
			t.Fatalf("revision %d: %v", rev, err)
		}
		if got != rev {
			t.Fatalf("expected %d, got %d", rev, got)
		}
	}
}

func TestMalformedETags(t *testing.T) {
	cases := map[string]string{
		"missing header":  "",
		"strong etag":     `"42"`,
		"no quotes":       `W/42`,
		"negative":        `W/"-1"`,
		"not a number":    `W/"abc"`,
		"trailing junk":   `W/"42"x`,
		"embedded number": `xW/"42"`,
	}
	for name, in := range cases {
		_, err := ToExpectedRevision(in)
		if err == nil {
			t.Fatalf("%s: expected error for %q", name, in)
		}
		if !validate.IsValidationError(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}
