// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = time.Hour

// DeviceStatusCachePrefix is the prefix for cached device statuses.
const DeviceStatusCachePrefix = "device:status:"

// DeviceStatusCacheTTL bounds staleness of the device status cache.
const DeviceStatusCacheTTL = 5 * time.Minute

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 72 * time.Hour
