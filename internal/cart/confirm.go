package cart

import "context"

type confirmKey struct{}

// WithConfirmation records the user's answer to a removal prompt on the
// context, for callers that collect confirmation before reaching the store
// (an HTTP layer, a CLI flag).
func WithConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, confirmed)
}

// ConfirmFromContext is a ConfirmFunc reading the answer stored by
// WithConfirmation. Absent an answer it declines.
func ConfirmFromContext(ctx context.Context, _ string) bool {
	v, ok := ctx.Value(confirmKey{}).(bool)
	return ok && v
}
