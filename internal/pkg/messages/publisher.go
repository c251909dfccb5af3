package messages

// Publisher publishes an event to some topic
type Publisher interface {
	Publish(msg interface{}, topic string) error
}
