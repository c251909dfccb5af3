package progress

import (
	"github.com/airenas/nercrf/internal/pkg/status"
)

//Convert returns the percentage of a training run
func Convert(st status.Status, step, total int) int32 {
	if st == status.Finished {
		return 100
	}
	if total <= 0 || step <= 0 {
		return 0
	}
	if step >= total {
		return 99
	}
	return int32(step * 100 / total)
}
