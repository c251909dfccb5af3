package persistence

import "time"

type (
	//Progress is one evaluation record of a training run
	Progress struct {
		RunID      string    `json:"runID" bson:"runID"`
		Status     string    `json:"status" bson:"status"`
		Epoch      int       `json:"epoch" bson:"epoch"`
		Step       int       `json:"step" bson:"step"`
		TotalSteps int       `json:"totalSteps" bson:"totalSteps"`
		Percent    int32     `json:"percent" bson:"percent"`
		Loss       float64   `json:"loss" bson:"loss"`
		Accuracy   float64   `json:"accuracy" bson:"accuracy"`
		Best       float64   `json:"best" bson:"best"`
		Checkpoint string    `json:"checkpoint,omitempty" bson:"checkpoint,omitempty"`
		Error      string    `json:"error,omitempty" bson:"error,omitempty"`
		Time       time.Time `json:"time" bson:"time"`
	}

	//ModelInfo describes the model loaded by the tag service
	ModelInfo struct {
		Checkpoint string    `json:"checkpoint"`
		RunID      string    `json:"runID"`
		Step       int       `json:"step"`
		Accuracy   float64   `json:"accuracy"`
		Loaded     time.Time `json:"loaded"`
	}
)

//ProgressSaver persists training progress
type ProgressSaver interface {
	Save(p *Progress) error
}
