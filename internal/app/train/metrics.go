package train

import (
	"time"

	"github.com/airenas/nercrf/internal/pkg/metrics"
	"github.com/airenas/nercrf/internal/pkg/persistence"
	"github.com/airenas/nercrf/internal/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
)

type trainMetrics struct {
	stepDur     prometheus.Histogram
	steps       prometheus.Counter
	checkpoints prometheus.Counter
	loss        prometheus.Gauge
	accuracy    prometheus.Gauge
	best        prometheus.Gauge
	testAcc     prometheus.Gauge
}

func newTrainMetrics() (*trainMetrics, error) {
	namespace := "ner_train"
	res := &trainMetrics{}
	res.stepDur = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "step_durations_seconds",
		Help:      "Training step duration distribution",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 15),
	})
	res.steps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "steps_total",
		Help:      "Optimizer steps",
	})
	res.checkpoints = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkpoints_total",
		Help:      "Saved checkpoints",
	})
	res.loss = prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "loss", Help: "Last batch loss"})
	res.accuracy = prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "accuracy",
		Help: "Last evaluated batch accuracy"})
	res.best = prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "best_accuracy",
		Help: "Best accuracy of the run"})
	res.testAcc = prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "test_accuracy",
		Help: "Held-out accuracy"})
	for _, c := range []prometheus.Collector{res.stepDur, res.steps, res.checkpoints, res.loss, res.accuracy,
		res.best, res.testAcc} {
		if err := metrics.Register(c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (m *trainMetrics) observeStep(d time.Duration, loss float64) {
	if m == nil {
		return
	}
	m.stepDur.Observe(d.Seconds())
	m.steps.Inc()
	m.loss.Set(loss)
}

func (m *trainMetrics) checkpointSaved() {
	if m != nil {
		m.checkpoints.Inc()
	}
}

func (m *trainMetrics) heldOut(acc float64) {
	if m != nil {
		m.testAcc.Set(acc)
	}
}

func (m *trainMetrics) update(p *persistence.Progress) {
	if m == nil {
		return
	}
	if st := status.From(p.Status); st != status.Training && st != status.Saved {
		return
	}
	m.accuracy.Set(p.Accuracy)
	m.best.Set(p.Best)
}
