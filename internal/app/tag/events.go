package tag

import (
	"encoding/json"
	"time"

	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/messages"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

type eventChannelFunc func() (<-chan amqp.Delivery, error)

func listenQueue(channel <-chan amqp.Delivery, reload func() error, fc chan<- bool) {
	for d := range channel {
		err := processMsg(&d, reload)
		if err != nil {
			cmdapp.Log.Errorf("Can't process message %s\n%s", d.MessageId, string(d.Body))
			cmdapp.Log.Error(err)
		}
	}
	cmdapp.Log.Infof("Stopped listening queue")
	close(fc)
}

func registerQueue(f eventChannelFunc, reload func() error, quitChan <-chan bool, initialWait time.Duration) {
	wait := initialWait
	for {
		select {
		case <-quitChan:
			cmdapp.Log.Infof("Quit listening queue")
			return
		default:
			fc := make(chan bool)
			cmdapp.Log.Infof("Trying listening queue")
			msgs, err := f()
			if err != nil {
				cmdapp.Log.Error(err)
				wait = wait * 2
				if wait > time.Minute {
					wait = time.Minute
				}
				cmdapp.Log.Infof("Wait before reconnect %d s", wait/time.Second)
				time.Sleep(wait)
				continue
			}
			wait = initialWait
			go listenQueue(msgs, reload, fc)
			<-fc
		}
	}
}

func processMsg(d *amqp.Delivery, reload func() error) error {
	var msg messages.ModelSaved
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return errors.Wrap(err, "Can't decode message")
	}
	cmdapp.Log.Infof("Model saved event: run %s, step %d, accuracy %.4f", msg.RunID, msg.Step, msg.Accuracy)
	return errors.Wrap(reload(), "Can't reload model")
}
