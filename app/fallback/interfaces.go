package fallback

import (
	"context"
	"time"

	"oboete/app/temporal"
)

// Resolver is the delegate consulted when rule-based resolution finds no
// temporal expression. The caller keeps ownership of content extraction;
// the delegate only answers when and how often.
type Resolver interface {
	Resolve(ctx context.Context, phrase string, now time.Time) (time.Time, *temporal.Rule, error)
}
