package status

//Status represents training run status
type Status int

const (
	//Started value
	Started Status = iota + 1
	//Training value
	Training
	//Saved value, a checkpoint was written
	Saved
	//Finished value
	Finished
	//Canceled value
	Canceled
	//Failed value
	Failed
)

var (
	statusName = map[Status]string{Started: "STARTED", Training: "TRAINING", Saved: "SAVED",
		Finished: "FINISHED", Canceled: "CANCELED", Failed: "FAILED"}
	nameStatus = map[string]Status{"STARTED": Started, "TRAINING": Training, "SAVED": Saved,
		"FINISHED": Finished, "CANCELED": Canceled, "FAILED": Failed}
)

//Name returns status name
func Name(st Status) string {
	return statusName[st]
}

//From converts name to status, 0 for unknown
func From(st string) Status {
	return nameStatus[st]
}

//String returns status name
func (st Status) String() string {
	return Name(st)
}

//Final checks if the run is over
func Final(st Status) bool {
	return st == Finished || st == Canceled || st == Failed
}
