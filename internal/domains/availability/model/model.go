package model

import "spacebook/shared"

const (
	EntityName = "availability"

	cachePrefix = "availability"
)

// ResourceCachePrefix covers every cached snapshot of one resource.
func ResourceCachePrefix(resourceID string) string {
	return shared.BuildCacheKey(cachePrefix, resourceID)
}

// CacheKey addresses the booked-slot snapshot of a resource on a date (YYYY-MM-DD).
func CacheKey(resourceID, date string) string {
	return shared.BuildCacheKey(cachePrefix, resourceID, date)
}
