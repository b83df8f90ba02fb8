// Package dataset indexes image directories laid out as one subdirectory per class.
package dataset

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions matches the training data, which ships as JPEG.
var DefaultExtensions = []string{".jpg"}

type Sample struct {
	Path  string `yaml:"path"`
	Label string `yaml:"label"`
	Index int    `yaml:"index"`
}

type Dataset struct {
	Root    string
	Classes []string
	Samples []Sample
}

// Scan indexes root. Class names are the sorted subdirectory names and
// samples are the files inside them whose extension is in exts.
func Scan(root string, exts []string) (*Dataset, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory %s: %w", root, err)
	}

	var classes []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			classes = append(classes, entry.Name())
		}
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("no class directories found in %s", root)
	}
	sort.Strings(classes)

	ds := &Dataset{Root: root, Classes: classes}
	for idx, class := range classes {
		files, err := os.ReadDir(filepath.Join(root, class))
		if err != nil {
			return nil, fmt.Errorf("failed to read class directory %s: %w", class, err)
		}
		names := make([]string, 0, len(files))
		for _, f := range files {
			if f.Type().IsRegular() && hasExtension(f.Name(), exts) {
				names = append(names, f.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			ds.Samples = append(ds.Samples, Sample{
				Path:  filepath.Join(root, class, name),
				Label: class,
				Index: idx,
			})
		}
	}
	return ds, nil
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Len is the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Counts returns the number of samples per class. Empty classes are included.
func (d *Dataset) Counts() map[string]int {
	counts := make(map[string]int, len(d.Classes))
	for _, c := range d.Classes {
		counts[c] = 0
	}
	for _, s := range d.Samples {
		counts[s.Label]++
	}
	return counts
}

// Split shuffles the samples with seed and holds out the last
// int(fraction*n) of them for validation. The same seed always yields the
// same split.
func (d *Dataset) Split(fraction float64, seed int64) (train, validation *Dataset, err error) {
	if fraction < 0 || fraction >= 1 {
		return nil, nil, fmt.Errorf("validation fraction must be in [0, 1), got %v", fraction)
	}

	shuffled := d.shuffled(seed)
	numVal := int(fraction * float64(len(shuffled)))
	cut := len(shuffled) - numVal

	train = &Dataset{Root: d.Root, Classes: d.Classes, Samples: shuffled[:cut]}
	validation = &Dataset{Root: d.Root, Classes: d.Classes, Samples: shuffled[cut:]}
	return train, validation, nil
}

// Subset returns n samples drawn with a seeded shuffle so that a truncated
// run still spans every class. n <= 0 or n >= Len returns every sample.
func (d *Dataset) Subset(n int, seed int64) *Dataset {
	if n <= 0 || n >= len(d.Samples) {
		return d
	}
	return &Dataset{Root: d.Root, Classes: d.Classes, Samples: d.shuffled(seed)[:n]}
}

func (d *Dataset) shuffled(seed int64) []Sample {
	out := make([]Sample, len(d.Samples))
	copy(out, d.Samples)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Batches groups samples into consecutive batches of size; the last batch
// may be shorter.
func (d *Dataset) Batches(size int) [][]Sample {
	if size <= 0 {
		size = 1
	}
	batches := make([][]Sample, 0, (len(d.Samples)+size-1)/size)
	for start := 0; start < len(d.Samples); start += size {
		end := min(start+size, len(d.Samples))
		batches = append(batches, d.Samples[start:end])
	}
	return batches
}
