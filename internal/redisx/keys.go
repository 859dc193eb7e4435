package redisx

import "time"

const (
	// Rendered dashboard per user: dashboard:{user_id} -> json
	KeyDashboard = "dashboard:%s"

	// Cache of an order's current status: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDashboard   = 5 * time.Minute
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
