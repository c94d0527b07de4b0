package constants

import "time"

// DefaultBridgeTimeout bounds a single round trip through the bridge.
const DefaultBridgeTimeout = 30 * time.Second

// DefaultSyncCooldown is the minimum interval between host sync triggers.
const DefaultSyncCooldown = 5 * time.Minute
