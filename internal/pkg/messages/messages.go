package messages

import "time"

//ModelSaved is published after a new best checkpoint is written
type ModelSaved struct {
	RunID      string    `json:"runID"`
	Checkpoint string    `json:"checkpoint"`
	Epoch      int       `json:"epoch"`
	Step       int       `json:"step"`
	Accuracy   float64   `json:"accuracy"`
	Time       time.Time `json:"time"`
}

//NewModelSaved creates the event
func NewModelSaved(runID, checkpoint string, epoch, step int, accuracy float64) *ModelSaved {
	return &ModelSaved{RunID: runID, Checkpoint: checkpoint, Epoch: epoch, Step: step,
		Accuracy: accuracy, Time: time.Now().UTC()}
}
