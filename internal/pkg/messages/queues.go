package messages

const (
	// ModelSavedTopic is the default exchange for checkpoint events
	ModelSavedTopic string = "ModelSaved"
)

//QueueFor creates the queue name of a listener bound to the topic
func QueueFor(topic, listener string) string {
	if listener == "" {
		return topic
	}
	return topic + "_" + listener
}
