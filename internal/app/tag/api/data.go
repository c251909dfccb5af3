package api

import "github.com/airenas/nercrf/internal/pkg/entity"

//Input contains text to tag
type Input struct {
	Text string `json:"text"`
}

//Result contains the tagged tokens and the found entities
type Result struct {
	Text     string          `json:"text"`
	Tokens   []string        `json:"tokens"`
	Tags     []string        `json:"tags"`
	Entities []entity.Entity `json:"entities"`
}
