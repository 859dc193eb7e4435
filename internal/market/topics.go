package market

const (
	TopicOrderCreated       = "marketplace.order.created"
	TopicOrderStatusChanged = "marketplace.order.status"
)

// Partition key = order_id, so all events for one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
