package context

import "context"

type contextKey string

const (
	requestIDKey contextKey = "observability_request_id"
	companyIDKey contextKey = "observability_company_id"
	actorIDKey   contextKey = "observability_actor_id"
	actorRoleKey contextKey = "observability_actor_role"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithCompanyID(ctx context.Context, companyID string) context.Context {
	if ctx == nil || companyID == "" {
		return ctx
	}
	return context.WithValue(ctx, companyIDKey, companyID)
}

func CompanyIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(companyIDKey).(string)
	return value
}

func WithActor(ctx context.Context, actorID, role string) context.Context {
	if ctx == nil {
		return ctx
	}
	if actorID != "" {
		ctx = context.WithValue(ctx, actorIDKey, actorID)
	}
	if role != "" {
		ctx = context.WithValue(ctx, actorRoleKey, role)
	}
	return ctx
}

func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	actorID, _ := ctx.Value(actorIDKey).(string)
	role, _ := ctx.Value(actorRoleKey).(string)
	return actorID, role
}
