package mocks

import (
	"github.com/airenas/nercrf/internal/app/tag/api"
	"github.com/airenas/nercrf/internal/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

//Tagger is a mock
type Tagger struct {
	mock.Mock
}

//Tag is a mocked Tag function
func (m *Tagger) Tag(text string) (*api.Result, error) {
	args := m.Mock.Called(text)
	return mockResult(args.Get(0)), args.Error(1)
}

//Info is a mocked Info function
func (m *Tagger) Info() *persistence.ModelInfo {
	args := m.Mock.Called()
	if r := args.Get(0); r != nil {
		return r.(*persistence.ModelInfo)
	}
	return nil
}

func mockResult(v interface{}) *api.Result {
	if v == nil {
		return nil
	}
	return v.(*api.Result)
}
