package mocks

import "github.com/stretchr/testify/mock"

//Loader is a mock
type Loader struct {
	mock.Mock
}

//Load is a mocked Load function
func (m *Loader) Load(dir string) error {
	args := m.Mock.Called(dir)
	return args.Error(0)
}
