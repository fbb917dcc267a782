// SPDX-License-Identifier: AGPL-3.0-or-later
package argstore

import "context"

type invocationKey struct{}

// WithInvocation tags ctx with the id of the hb run performing writes, so
// recorded changes can be grouped per invocation.
func WithInvocation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationKey{}, id)
}

// InvocationFrom returns the id stored by WithInvocation, or "".
func InvocationFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(invocationKey{}).(string)
	return id
}
