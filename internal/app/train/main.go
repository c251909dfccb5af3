package train

import (
	"context"
	"math/rand"
	"time"

	"github.com/airenas/nercrf/internal/pkg/checkpoint"
	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/messages"
	"github.com/airenas/nercrf/internal/pkg/model"
	"github.com/airenas/nercrf/internal/pkg/mongo"
	"github.com/airenas/nercrf/internal/pkg/nn"
	"github.com/airenas/nercrf/internal/pkg/rabbit"
	"github.com/airenas/nercrf/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var appName = "NER BiLSTM-CRF Training Service"

var rootCmd = &cobra.Command{
	Use:   "trainService",
	Short: appName,
	Long:  `Trains BiLSTM-CRF named entity recognition model and keeps the best checkpoints`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	fl := rootCmd.PersistentFlags()
	fl.String("train_path", "./data/train.txt", "Training corpus file")
	fl.String("vocab_file", "./data/vocab.txt", "Vocabulary file")
	fl.String("tag_file", "./data/tags.txt", "Tag file")
	fl.Int("hidden_num", 512, "LSTM units per direction")
	fl.Int("embedding_size", 300, "Embedding size")
	fl.Int("batch_size", 64, "Batch size")
	fl.Float64("lr", 0.001, "Learning rate")
	fl.Int("epoch", 10, "Epochs")
	fl.String("output_dir", "checkpoints/", "Checkpoints dir")
	fl.Int("port", 0, "Monitor port, 0 disables the monitor")
	for _, n := range []string{"train_path", "vocab_file", "tag_file", "hidden_num", "embedding_size", "batch_size",
		"lr", "epoch", "output_dir", "port"} {
		cmdapp.BindFlag(n, fl.Lookup(n))
	}
	cmdapp.Config.SetDefault("dropout", 0.5)
	cmdapp.Config.SetDefault("eval_every", 20)
	cmdapp.Config.SetDefault("max_to_keep", 3)
	cmdapp.Config.SetDefault("test_ratio", 0.2)
	cmdapp.Config.SetDefault("seed", 0)
	cmdapp.Config.SetDefault("evaluation.heldOut", false)
	cmdapp.Config.SetDefault("messageServer.topic", messages.ModelSavedTopic)
}

//Execute starts the training
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	c := cmdapp.Config

	seed := c.GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cmdapp.Log.Infof("Seed %d", seed)
	rnd := rand.New(rand.NewSource(seed))

	data, err := prepareData(c.GetString("train_path"), c.GetString("vocab_file"), c.GetString("tag_file"),
		c.GetFloat64("test_ratio"))
	cmdapp.CheckOrPanic(err, "Can't prepare data")

	cfg := model.Config{VocabSize: data.words.Size(), LabelSize: data.tags.Size(), HiddenNum: c.GetInt("hidden_num"),
		EmbeddingSize: c.GetInt("embedding_size"), Dropout: c.GetFloat64("dropout")}
	cmdapp.Log.Infof("hidden_num:%d, vocab_size:%d, label_size:%d", cfg.HiddenNum, cfg.VocabSize, cfg.LabelSize)
	m, err := model.New(cfg, rnd)
	cmdapp.CheckOrPanic(err, "Can't init model")

	outDir := c.GetString("output_dir")
	manager, err := checkpoint.NewManager(outDir, c.GetInt("max_to_keep"))
	cmdapp.CheckOrPanic(err, "Can't init checkpoint manager")

	params := Params{RunID: uuid.New().String(), BatchSize: c.GetInt("batch_size"), Epochs: c.GetInt("epoch"),
		EvalEvery: c.GetInt("eval_every"), HeldOut: c.GetBool("evaluation.heldOut"),
		Topic: c.GetString("messageServer.topic")}
	cmdapp.Log.Infof("Run %s", params.RunID)
	t, err := NewTrainer(m, nn.NewAdam(c.GetFloat64("lr")), manager, params, rnd)
	cmdapp.CheckOrPanic(err, "Can't init trainer")
	t.Train, t.Test = data.train, data.test

	_, err = t.Restore(outDir)
	cmdapp.CheckOrPanic(err, "Can't restore checkpoint")

	t.metrics, err = newTrainMetrics()
	cmdapp.CheckOrPanic(err, "Can't init metrics")

	sc := utils.NewSignalChannel()
	defer sc.Close()
	ctx, cancel := utils.ContextOnSignal(context.Background(), sc)
	defer cancel()

	closeFn, err := initSinks(ctx, t)
	cmdapp.CheckOrPanic(err, "Can't init progress sinks")
	defer closeFn()

	err = t.Run(ctx)
	if errors.Is(err, context.Canceled) {
		cmdapp.Log.Info("Exiting training")
		return
	}
	cmdapp.CheckOrPanic(err, "Training failed")
}

func initSinks(ctx context.Context, t *Trainer) (func(), error) {
	var closers []func()
	closeFn := func() {
		for _, f := range closers {
			f()
		}
	}
	c := cmdapp.Config
	if port := c.GetInt("port"); port > 0 {
		mn := NewMonitor()
		t.Progress = append(t.Progress, mn)
		go func() {
			cmdapp.LogIf(StartMonitor(ctx, mn, port))
		}()
	}
	if url := c.GetString("mongo.url"); url != "" {
		sp, err := mongo.NewSessionProvider(url)
		if err != nil {
			return closeFn, err
		}
		closers = append(closers, sp.Close)
		ps, err := mongo.NewProgressSaver(sp)
		if err != nil {
			return closeFn, err
		}
		t.Progress = append(t.Progress, ps)
	}
	if c.GetString("messageServer.url") != "" {
		pr, err := rabbit.NewChannelProvider()
		if err != nil {
			return closeFn, err
		}
		closers = append(closers, pr.Close)
		t.Publisher = rabbit.NewPublisher(pr)
	}
	return closeFn, nil
}
