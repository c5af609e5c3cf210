package authcore

import "context"

type subjectContextKey struct{}

// WithSubject attaches a validated identity assertion to ctx. The HTTP
// middleware calls this after Validate; handlers read it back through
// [SubjectFromContext].
func WithSubject(ctx context.Context, subject AuthResult) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, subject)
}

// SubjectFromContext returns the identity attached by [WithSubject], if any.
func SubjectFromContext(ctx context.Context) (AuthResult, bool) {
	if ctx == nil {
		return AuthResult{}, false
	}
	subject, ok := ctx.Value(subjectContextKey{}).(AuthResult)
	return subject, ok
}
