package requestdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/brightclass/brightclass-backend/internal/types"
)

type contextKey struct{}

var requestDataKey = contextKey{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}

type RequestData struct {
	TokenString  string
	RefreshToken string
	UserID       uuid.UUID
	SchoolID     uuid.UUID
	Role         types.Role
}
