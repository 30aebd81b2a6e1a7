package v1

import "time"

// Neighbor is one nearest-neighbour hit.
type Neighbor struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Point is a word placed on the 2-D projection.
type Point struct {
	Word string  `json:"word"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Word is a vocabulary entry with its corpus frequency.
type Word struct {
	Text  string `json:"word"`
	Count int64  `json:"count"`
}

// ModelInfo describes the trained model.
type ModelInfo struct {
	ID         string    `json:"id"`
	Vocabulary int       `json:"vocabulary"`
	Dimension  int       `json:"dimension"`
	TrainedAt  time.Time `json:"trained_at"`
}
