package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicOrderCreated    = "order.created"
	TopicOrderPaid       = "order.paid"
	TopicOrderCancelled  = "order.cancelled"
	TopicContactReceived = "contact.received"
)

// DefaultTopics returns the canonical list of topics that trigger
// notifications.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderPaid,
		TopicOrderCancelled,
		TopicContactReceived,
	}
}
