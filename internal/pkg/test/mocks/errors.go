package mocks

import "github.com/pkg/errors"

var errClosed = errors.New("closed")
