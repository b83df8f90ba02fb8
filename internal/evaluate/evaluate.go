// Package evaluate measures a classifier against a labeled image set.
package evaluate

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Brownie44l1/dermascan-api/internal/dataset"
	"github.com/Brownie44l1/dermascan-api/internal/imaging"
	"github.com/Brownie44l1/dermascan-api/internal/model"
)

const epsilon = 1e-7

// LoaderFunc reads the sample at path and returns the model input tensor.
type LoaderFunc func(path string) ([]float32, error)

// ImageLoader decodes image files from disk and prepares them with pre.
func ImageLoader(pre *imaging.Preprocessor) LoaderFunc {
	return func(path string) ([]float32, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		img, _, err := imaging.Decode(raw)
		if err != nil {
			return nil, err
		}
		return pre.Tensor(img)
	}
}

type Options struct {
	// Workers bounds concurrent image loading; zero uses GOMAXPROCS.
	Workers  int
	Progress func(done, total int)
}

type ClassMetrics struct {
	Class     string
	Support   int
	Precision float64
	Recall    float64
	F1        float64
}

type Report struct {
	Classes   []string
	Total     int
	Correct   int
	Accuracy  float64
	Loss      float64
	Confusion [][]int
	PerClass  []ClassMetrics
}

type outcome struct {
	truth     int
	predicted int
	loss      float64
}

// Run classifies every sample and aggregates accuracy, mean sparse
// categorical cross-entropy and a confusion matrix over classes.
func Run(ctx context.Context, samples []dataset.Sample, classes []string, clf model.Classifier, load LoaderFunc, opts Options) (*Report, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to evaluate")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	labels, err := labelIndex(samples, classes)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]outcome, len(samples))
	indices := make(chan int)
	done := make(chan struct{}, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(indices)
		for i := range samples {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case indices <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range indices {
				s := samples[i]
				input, err := load(s.Path)
				if err != nil {
					return fmt.Errorf("load %s: %w", s.Path, err)
				}
				p, err := clf.Classify(input)
				if err != nil {
					return fmt.Errorf("classify %s: %w", s.Path, err)
				}
				truth := labels[s.Label]
				results[i] = outcome{
					truth:     truth,
					predicted: p.Index,
					loss:      crossEntropy(p.Probabilities, truth),
				}
				done <- struct{}{}
			}
			return nil
		})
	}

	if opts.Progress != nil {
		progressDone := make(chan struct{})
		go func() {
			defer close(progressDone)
			for n := 1; n <= len(samples); n++ {
				select {
				case <-done:
					opts.Progress(n, len(samples))
				case <-gctx.Done():
					return
				}
			}
		}()
		defer func() { <-progressDone }()
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return aggregate(results, classes), nil
}

// labelIndex maps dataset labels to class indices, ignoring case so that
// directory names need not match the model's capitalisation.
func labelIndex(samples []dataset.Sample, classes []string) (map[string]int, error) {
	byName := make(map[string]int, len(classes))
	for i, c := range classes {
		byName[strings.ToLower(c)] = i
	}
	labels := make(map[string]int)
	for _, s := range samples {
		if _, ok := labels[s.Label]; ok {
			continue
		}
		idx, ok := byName[strings.ToLower(s.Label)]
		if !ok {
			return nil, fmt.Errorf("dataset class %q is not one of the model classes %v", s.Label, classes)
		}
		labels[s.Label] = idx
	}
	return labels, nil
}

func crossEntropy(probs []float32, truth int) float64 {
	if truth < 0 || truth >= len(probs) {
		return -math.Log(epsilon)
	}
	p := float64(probs[truth])
	p = math.Min(math.Max(p, epsilon), 1-epsilon)
	return -math.Log(p)
}

func aggregate(results []outcome, classes []string) *Report {
	n := len(classes)
	confusion := make([][]int, n)
	for i := range confusion {
		confusion[i] = make([]int, n)
	}

	r := &Report{Classes: classes, Total: len(results), Confusion: confusion}
	var lossSum float64
	for _, o := range results {
		lossSum += o.loss
		if o.predicted >= 0 && o.predicted < n {
			confusion[o.truth][o.predicted]++
		}
		if o.predicted == o.truth {
			r.Correct++
		}
	}
	r.Accuracy = float64(r.Correct) / float64(r.Total)
	r.Loss = lossSum / float64(r.Total)

	for i, class := range classes {
		var tp, support, predicted int
		tp = confusion[i][i]
		for j := 0; j < n; j++ {
			support += confusion[i][j]
			predicted += confusion[j][i]
		}
		m := ClassMetrics{Class: class, Support: support}
		if predicted > 0 {
			m.Precision = float64(tp) / float64(predicted)
		}
		if support > 0 {
			m.Recall = float64(tp) / float64(support)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.PerClass = append(r.PerClass, m)
	}
	return r
}
