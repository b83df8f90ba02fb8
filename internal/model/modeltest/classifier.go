// Package modeltest provides classifiers for tests that cannot load an ONNX model.
package modeltest

import (
	"sync"

	"github.com/Brownie44l1/dermascan-api/internal/model"
)

// Classifier returns the scores produced by Score for every input.
type Classifier struct {
	Classes []string
	// Score computes the raw network output for one input tensor.
	Score func(input []float32) []float32
	Err   error

	mu    sync.Mutex
	calls int
}

// Fixed always predicts class index with probability p, spreading the rest
// evenly over the other classes.
func Fixed(classes []string, index int, p float32) *Classifier {
	return &Classifier{
		Classes: classes,
		Score: func([]float32) []float32 {
			scores := make([]float32, len(classes))
			rest := (1 - p) / float32(len(classes)-1)
			for i := range scores {
				scores[i] = rest
			}
			scores[index] = p
			return scores
		},
	}
}

func (c *Classifier) Classify(input []float32) (*model.Prediction, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	return model.PredictionFromScores(c.Score(input), c.Classes, false)
}

// Calls reports how many times Classify ran.
func (c *Classifier) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
