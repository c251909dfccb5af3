package rabbit

import (
	"github.com/airenas/nercrf/internal/pkg/cmdapp"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

//Publisher publish events to rabbit mq broker
type Publisher struct {
	ChannelProvider *ChannelProvider
}

//NewPublisher initializes rabbit publisher
func NewPublisher(provider *ChannelProvider) *Publisher {
	return &Publisher{ChannelProvider: provider}
}

//Publish publishes the message as json to the fanout exchange named by topic
func (sender *Publisher) Publish(msg interface{}, topic string) error {
	cmdapp.Log.Infof("Publishing event %s", topic)
	body, err := getBytes(msg)
	if err != nil {
		return errors.Wrap(err, "Can't prepare event")
	}
	err = sender.ChannelProvider.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
		if err := DeclareExchange(ch, topic); err != nil {
			return err
		}
		return ch.Publish(
			topic, // exchange
			"",
			false, // mandatory
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        body,
			})
	})
	if err != nil {
		return errors.Wrap(err, "Can't publish event")
	}
	return nil
}
