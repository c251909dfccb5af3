package mongo

const (
	store         = "nercrf"
	progressTable = "progress"
)

var indexData = []IndexData{
	newIndexData(progressTable, "runID", false),
	newIndexData(progressTable, "time", false)}
