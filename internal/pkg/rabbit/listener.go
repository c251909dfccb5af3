package rabbit

import (
	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

//EventChannelFunc returns a function opening the delivery channel of a queue bound to the topic exchange
func EventChannelFunc(pr *ChannelProvider, topic, queue string) func() (<-chan amqp.Delivery, error) {
	return func() (<-chan amqp.Delivery, error) {
		var res <-chan amqp.Delivery
		qName := pr.QueueName(queue)
		err := pr.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
			if err := DeclareExchange(ch, topic); err != nil {
				return errors.Wrap(err, "Can't declare exchange "+topic)
			}
			q, err := Declare(ch, qName)
			if err != nil {
				return errors.Wrap(err, "Can't declare queue "+qName)
			}
			if err := ch.QueueBind(q.Name, "", topic, false, nil); err != nil {
				return errors.Wrap(err, "Can't bind queue "+qName)
			}
			res, err = ch.Consume(q.Name, "", true, false, false, false, nil)
			return errors.Wrap(err, "Can't consume "+qName)
		})
		if err != nil {
			return nil, err
		}
		cmdapp.Log.Infof("Listening queue %s", qName)
		return res, nil
	}
}
