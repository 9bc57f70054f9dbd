package main

import "github.com/brensch/gridsearch/stream"

type LevelsResponse struct {
	Levels []stream.LevelInfo `json:"levels"`
}
