package events

// Topic constants for domain events emitted by the ordering core.
const (
	TopicOrderCommitted   = "order.committed"
	TopicQuantityAdjusted = "order.quantity_adjusted"
	TopicStockChanged     = "stock.changed"
)

// DefaultTopics returns the canonical list of topics.
func DefaultTopics() []string {
	return []string{
		TopicOrderCommitted,
		TopicQuantityAdjusted,
		TopicStockChanged,
	}
}
