package backend

import "context"

type credentialKey struct{}

// WithCredential attaches the caller's bearer credential, issued by the
// external identity provider, to ctx. The client forwards it unchanged.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

func CredentialFrom(ctx context.Context) string {
	token, _ := ctx.Value(credentialKey{}).(string)
	return token
}
