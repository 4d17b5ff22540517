package astiknn

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// DefaultK is the default number of neighbors
const DefaultK = 5

// ErrNoSamples is returned when predicting without samples
var ErrNoSamples = errors.New("astiknn: no samples")

// Model is a k nearest neighbors gesture model. Confidence is the share of the k nearest
// neighbors voting for the predicted label.
type Model struct {
	k  int
	ls []string
	m  sync.RWMutex // Locks ls and ss
	ss [][]float64
}

// New creates a new model
func New(k int) *Model {
	if k <= 0 {
		k = DefaultK
	}
	return &Model{k: k}
}

// Add adds a labeled sample
func (m *Model) Add(features []float64, label string) (err error) {
	// Lock
	m.m.Lock()
	defer m.m.Unlock()

	// Check length
	if len(m.ss) > 0 && len(features) != len(m.ss[0]) {
		err = errors.Errorf("astiknn: sample has %d features, expected %d", len(features), len(m.ss[0]))
		return
	}

	// Append
	fs := make([]float64, len(features))
	copy(fs, features)
	m.ss = append(m.ss, fs)
	m.ls = append(m.ls, label)
	return
}

// Len returns the number of samples
func (m *Model) Len() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return len(m.ss)
}

// Labels returns the sorted list of distinct labels
func (m *Model) Labels() (ls []string) {
	m.m.RLock()
	defer m.m.RUnlock()
	is := make(map[string]bool)
	for _, l := range m.ls {
		if !is[l] {
			is[l] = true
			ls = append(ls, l)
		}
	}
	sort.Strings(ls)
	return
}

type neighbor struct {
	d float64
	l string
}

// Predict implements the astigesture.Model interface
func (m *Model) Predict(features []float64) (label string, confidence float64, err error) {
	// Lock
	m.m.RLock()
	defer m.m.RUnlock()

	// No samples
	if len(m.ss) == 0 {
		err = ErrNoSamples
		return
	}

	// Check length
	if len(features) != len(m.ss[0]) {
		err = errors.Errorf("astiknn: got %d features, expected %d", len(features), len(m.ss[0]))
		return
	}

	// Compute distances
	ns := make([]neighbor, len(m.ss))
	for idx, s := range m.ss {
		ns[idx] = neighbor{d: floats.Distance(s, features, 2), l: m.ls[idx]}
	}
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].d < ns[j].d })

	// Limit
	k := m.k
	if k > len(ns) {
		k = len(ns)
	}
	ns = ns[:k]

	// Vote, ties go to the label having the nearest neighbor
	vs := make(map[string]int)
	for _, n := range ns {
		vs[n.l]++
	}
	var max int
	for _, n := range ns {
		if vs[n.l] > max {
			label = n.l
			max = vs[n.l]
		}
	}
	confidence = float64(max) / float64(k)
	return
}
