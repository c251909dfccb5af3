package mocks

import (
	"github.com/airenas/nercrf/internal/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

//ProgressSaver is a mock
type ProgressSaver struct {
	mock.Mock
}

//Save is a mocked Save function
func (m *ProgressSaver) Save(p *persistence.Progress) error {
	args := m.Mock.Called(p)
	return args.Error(0)
}
