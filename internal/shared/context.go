package shared

import "context"

type companyContextKey struct{}

// ContextWithCompany stores the active company id in context. The HTTP layer
// resolves it from the request; core operations only ever read it.
func ContextWithCompany(ctx context.Context, companyID int64) context.Context {
	return context.WithValue(ctx, companyContextKey{}, companyID)
}

// CompanyFromContext extracts the active company id from context.
func CompanyFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(companyContextKey{}).(int64)
	return id, ok
}

// RequireCompany returns the active company id or ErrNoCompanyContext.
func RequireCompany(ctx context.Context) (int64, error) {
	id, ok := CompanyFromContext(ctx)
	if !ok || id == 0 {
		return 0, ErrNoCompanyContext
	}
	return id, nil
}
