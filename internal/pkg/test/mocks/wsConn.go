package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

//WsConn is a mock of a websocket connection
type WsConn struct {
	mock.Mock
	//Msgs feeds ReadMessage, read fails when the channel is closed
	Msgs chan []byte
}

//NewWsConn creates mock
func NewWsConn() *WsConn {
	return &WsConn{Msgs: make(chan []byte)}
}

//ReadMessage returns the next message from Msgs
func (m *WsConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-m.Msgs
	if !ok {
		return 0, nil, errClosed
	}
	return 1, msg, nil
}

//Close is a mocked Close function
func (m *WsConn) Close() error {
	args := m.Mock.Called()
	return args.Error(0)
}

//WriteJSON is a mocked WriteJSON function
func (m *WsConn) WriteJSON(v interface{}) error {
	args := m.Mock.Called(v)
	return args.Error(0)
}

//SetWriteDeadline is a mocked SetWriteDeadline function
func (m *WsConn) SetWriteDeadline(t time.Time) error {
	args := m.Mock.Called(t)
	return args.Error(0)
}
