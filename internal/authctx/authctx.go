// Package authctx carries the backend session credential through one
// tool invocation.
//
// The credential is an opaque blob owned by the serving environment;
// this layer never inspects it beyond presence. It rides on the
// context.Context for exactly one invocation: attached when the
// transport delivers a request, read when the API client builds an
// outgoing call, and never stored anywhere that outlives the call.
// It must never appear in logs or journal entries.
package authctx

import (
	"context"
	"errors"
	"strings"
)

// credentialKey is the private context key for the session credential.
type credentialKey struct{}

// ErrMissingCredential is returned when an invocation carries no
// backend credential. This is a hard precondition failure: no network
// call may be issued once it is seen.
var ErrMissingCredential = errors.New(
	"no authentication context: set the backend session credential (SPRINTLINE_SESSION) and restart the server")

// WithCredential returns a child context carrying the session
// credential. An empty credential is not attached.
func WithCredential(ctx context.Context, credential string) context.Context {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialKey{}, credential)
}

// FromContext extracts the session credential from the invocation
// context. Returns ErrMissingCredential when absent or blank.
func FromContext(ctx context.Context) (string, error) {
	credential, ok := ctx.Value(credentialKey{}).(string)
	if !ok || strings.TrimSpace(credential) == "" {
		return "", ErrMissingCredential
	}
	return credential, nil
}
