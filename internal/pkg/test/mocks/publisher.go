package mocks

import "github.com/stretchr/testify/mock"

//Publisher is a mock
type Publisher struct {
	mock.Mock
}

//Publish is a mocked Publish function
func (m *Publisher) Publish(msg interface{}, topic string) error {
	args := m.Mock.Called(msg, topic)
	return args.Error(0)
}
