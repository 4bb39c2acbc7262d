package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"housetab-backend/database"
	"housetab-backend/models"

	"github.com/google/uuid"
)

const balanceCacheTTL = 5 * time.Minute

func balanceCacheKey(householdID uuid.UUID) string {
	return fmt.Sprintf("balances:%s", householdID)
}

// GetCachedBalances returns the cached balance summary for a household, or
// false when Redis is down or the key is cold.
func GetCachedBalances(ctx context.Context, householdID uuid.UUID) (*models.HouseholdBalanceSummary, bool) {
	if database.Redis == nil {
		return nil, false
	}

	raw, err := database.Redis.Get(ctx, balanceCacheKey(householdID)).Bytes()
	if err != nil {
		return nil, false
	}

	var summary models.HouseholdBalanceSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// CacheBalances stores a balance summary with a short TTL.
func CacheBalances(ctx context.Context, householdID uuid.UUID, summary *models.HouseholdBalanceSummary) {
	if database.Redis == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, balanceCacheKey(householdID), raw, balanceCacheTTL)
}

// InvalidateBalances drops the cached summary after a post or settle.
func InvalidateBalances(ctx context.Context, householdID uuid.UUID) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(ctx, balanceCacheKey(householdID))
}
