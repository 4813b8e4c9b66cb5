package constants

import (
	"time"
)

// Redis key layout: boletamaster:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_MEDIUM     = 12 * time.Hour   // venues
	TTL_DYNAMIC_MEDIUM    = 10 * time.Minute // analytics
	TTL_REALTIME_SHORT    = 30 * time.Second // resale listings
	TTL_LOCK_DEFAULT      = 10 * time.Second
	TTL_LOCK_WAIT_DEFAULT = 3 * time.Second
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "boletamaster"
	LOCK_PREFIX  = CACHE_PREFIX + ":lock:"
)

// ================== VENUES MODULE ==================

const (
	CACHE_KEY_VENUES_APPROVED = CACHE_PREFIX + ":venues:approved"
)

const (
	TTL_VENUES_APPROVED = TTL_STATIC_MEDIUM
)

// ================== MARKETPLACE MODULE ==================

const (
	CACHE_KEY_LISTINGS_ACTIVE = CACHE_PREFIX + ":marketplace:listings:active"
)

const (
	TTL_LISTINGS_ACTIVE = TTL_REALTIME_SHORT
)

// ================== ANALYTICS MODULE ==================

const (
	CACHE_KEY_ANALYTICS_PLATFORM  = CACHE_PREFIX + ":analytics:platform"
	CACHE_KEY_ANALYTICS_ORGANIZER = CACHE_PREFIX + ":analytics:organizer:" // + login
	CACHE_KEY_ANALYTICS_EVENT     = CACHE_PREFIX + ":analytics:event:"     // + event-id
)

const (
	TTL_ANALYTICS_EARNINGS = TTL_DYNAMIC_MEDIUM
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_ANALYTICS = CACHE_PREFIX + ":analytics:*"
)

func BuildOrganizerEarningsKey(login string) string {
	return CACHE_KEY_ANALYTICS_ORGANIZER + login
}

func BuildEventEarningsKey(eventID string) string {
	return CACHE_KEY_ANALYTICS_EVENT + eventID
}

func BuildLockKey(resource string) string {
	return LOCK_PREFIX + resource
}
