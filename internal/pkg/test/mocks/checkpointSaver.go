package mocks

import (
	"github.com/airenas/nercrf/internal/pkg/checkpoint"
	"github.com/stretchr/testify/mock"
)

//CheckpointSaver is a mock
type CheckpointSaver struct {
	mock.Mock
}

//Save is a mocked Save function
func (m *CheckpointSaver) Save(st *checkpoint.State) (string, error) {
	args := m.Mock.Called(st)
	return args.String(0), args.Error(1)
}
