package usecase

import (
	"context"

	"clinic-appointment-service/internal/delivery/http/middleware"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// normalizePage clamps page and limit to sane values and returns the matching offset.
func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, (page - 1) * limit
}

// actorFromContext returns the authenticated user, or nil for system-initiated calls.
func actorFromContext(ctx context.Context) *uuid.UUID {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &userID
}
