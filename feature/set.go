package feature

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

type data struct {
	f    Feature
	data []float64
}

// Set represents a mapping to each feature data keyed by the string representation
// of the feature.
type Set struct {
	set map[string]data
}

func NewSet() *Set {
	return &Set{set: make(map[string]data)}
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.set)
}

// Set stores the feature data, replacing any previous data for the same feature
func (s *Set) Set(f Feature, vals []float64) *Set {
	s.set[f.String()] = data{f: f, data: vals}
	return s
}

func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	d, exists := s.set[f.String()]
	if !exists {
		return nil, false
	}
	return d.data, true
}

func (s *Set) Del(f Feature) {
	delete(s.set, f.String())
}

// Update copies all features of other into the set
func (s *Set) Update(other *Set) *Set {
	if other == nil {
		return s
	}
	for k, v := range other.set {
		s.set[k] = v
	}
	return s
}

// Filter returns a new set with the features of the requested type
func (s *Set) Filter(ft FeatureType) *Set {
	out := NewSet()
	if s == nil {
		return out
	}
	for k, v := range s.set {
		if v.f.Type() == ft {
			out.set[k] = v
		}
	}
	return out
}

// Labels returns the sorted labels of all tracked features in the Set
func (s *Set) Labels() *Labels {
	if s == nil {
		return NewLabels(nil)
	}
	labels := make([]Feature, 0, len(s.set))
	for _, d := range s.set {
		labels = append(labels, d.f)
	}
	sort.Slice(labels, func(i, j int) bool {
		return labels[i].String() < labels[j].String()
	})
	return NewLabels(labels)
}

// Matrix returns the set as an m x n matrix with m observations and n features ordered
// by label. A leading column of ones is added when intercept is true. Returns nil for an
// empty set.
func (s *Set) Matrix(intercept bool) *mat.Dense {
	labels := s.Labels().Labels()
	if len(labels) == 0 {
		return nil
	}

	m := len(s.set[labels[0].String()].data)
	n := len(labels)
	offset := 0
	if intercept {
		n += 1
		offset = 1
	}
	if m == 0 {
		return nil
	}

	obs := make([]float64, m*n)
	if intercept {
		for i := 0; i < m; i++ {
			obs[n*i] = 1.0
		}
	}
	for j, label := range labels {
		for i, v := range s.set[label.String()].data {
			obs[n*i+j+offset] = v
		}
	}
	return mat.NewDense(m, n, obs)
}
