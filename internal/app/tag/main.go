package tag

import (
	"context"
	"time"

	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/messages"
	"github.com/airenas/nercrf/internal/pkg/metrics"
	"github.com/airenas/nercrf/internal/pkg/rabbit"
	"github.com/airenas/nercrf/internal/pkg/vocab"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var appName = "NER Tagging Service"

var rootCmd = &cobra.Command{
	Use:   "tagService",
	Short: appName,
	Long:  `HTTP server to find named entities with the latest BiLSTM-CRF checkpoint`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	fl := rootCmd.PersistentFlags()
	fl.Int("port", 8000, "Default service port")
	fl.String("vocab_file", "./data/vocab.txt", "Vocabulary file")
	fl.String("tag_file", "./data/tags.txt", "Tag file")
	fl.String("output_dir", "checkpoints/", "Checkpoints dir")
	for _, n := range []string{"port", "vocab_file", "tag_file", "output_dir"} {
		cmdapp.BindFlag(n, fl.Lookup(n))
	}
	cmdapp.Config.SetDefault("messageServer.topic", messages.ModelSavedTopic)
	cmdapp.Config.SetDefault("messageServer.listener", "tag")
}

//Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	c := cmdapp.Config

	data := &ServiceData{}
	err := initMetrics(data)
	cmdapp.CheckOrPanic(err, "Can't init metrics")

	words, err := vocab.ReadFile(c.GetString("vocab_file"))
	cmdapp.CheckOrPanic(err, "Can't read vocab")
	tags, err := vocab.ReadFile(c.GetString("tag_file"))
	cmdapp.CheckOrPanic(err, "Can't read tags")
	tagger, err := newModelTagger(words, tags)
	cmdapp.CheckOrPanic(err, "Can't init tagger")

	dir := c.GetString("output_dir")
	rl, err := NewReloader(dir, tagger)
	cmdapp.CheckOrPanic(err, "Can't init reloader")
	cmdapp.LogIf(tagger.Load(dir))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl.Start(ctx)

	if c.GetString("messageServer.url") != "" {
		pr, err := rabbit.NewChannelProvider()
		cmdapp.CheckOrPanic(err, "Can't init rabbit channel provider")
		defer pr.Close()
		topic := c.GetString("messageServer.topic")
		f := rabbit.EventChannelFunc(pr, topic, messages.QueueFor(topic, c.GetString("messageServer.listener")))
		qc := make(chan bool)
		defer close(qc)
		go registerQueue(f, rl.Reload, qc, 5*time.Second)
	}

	data.tagger = tagger
	data.health = healthcheck.NewHandler()
	data.health.AddReadinessCheck("model", tagger.Ready)
	data.Port = c.GetInt("port")

	err = StartWebServer(data)
	cmdapp.CheckOrPanic(err, "Can't start web server")
}

func initMetrics(data *ServiceData) error {
	data.metrics.responseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ner_tag_service",
			Name:      "request_durations_seconds",
			Help:      "Request latency distributions.",
		}, nil)
	return metrics.Register(data.metrics.responseDur)
}
