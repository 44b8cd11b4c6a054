package usecase

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/farm-dashboard/internal/apperror"
	"github.com/example/farm-dashboard/internal/logging"
	"github.com/example/farm-dashboard/internal/repository"
)

const allFarmsParam = "all"

// ResolveScope decides which farms the visitor aggregates cover. visible is
// false when a non-admin caller has no farms; the returned scope must not be
// used in that case.
//
// Admins may ask for any farm or for all of them. Other callers are limited to
// farms they own or belong to, and a farm outside that set silently falls back
// to the first visible farm.
func (uc *DashboardUseCase) ResolveScope(ctx context.Context, req Request) (scope repository.Scope, visible bool, err error) {
	requested := strings.TrimSpace(req.FarmID)
	if strings.EqualFold(requested, allFarmsParam) {
		requested = ""
	}

	if req.IsAdmin {
		if requested == "" {
			return repository.AllFarms(), true, nil
		}
		if _, err := uuid.Parse(requested); err != nil {
			return repository.Scope{}, false, apperror.InvalidParameter("farmId", requested)
		}
		return repository.SingleFarm(requested), true, nil
	}

	ids, err := uc.repo.VisibleFarmIDs(ctx, req.UserID)
	if err != nil {
		return repository.Scope{}, false, apperror.QueryFailed("farmScope", err)
	}
	if len(ids) == 0 {
		return repository.Scope{}, false, nil
	}
	if requested != "" && slices.Contains(ids, requested) {
		return repository.SingleFarm(requested), true, nil
	}
	if requested != "" {
		logging.WithOperation(uc.logger, "usecase.resolve_scope", req.RequestID).Info(
			"requested farm not visible, using default farm",
			zap.String("user_id", req.UserID),
			zap.String("requested_farm_id", requested),
			zap.String("farm_id", ids[0]),
		)
	}
	return repository.SingleFarm(ids[0]), true, nil
}
