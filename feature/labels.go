package feature

// Labels tracks a slice of features and their index locations that match up
// with the ordering of the coefficients assigned to each of these features.
type Labels struct {
	idx    map[string]int
	labels []Feature
}

func NewLabels(labels []Feature) *Labels {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l.String()] = i
	}
	return &Labels{
		labels: labels,
		idx:    idx,
	}
}

func (l *Labels) Len() int {
	if l == nil {
		return 0
	}
	return len(l.labels)
}

// Labels returns a copy of the ordered features
func (l *Labels) Labels() []Feature {
	if l == nil {
		return nil
	}
	labels := make([]Feature, len(l.labels))
	copy(labels, l.labels)
	return labels
}

func (l *Labels) Index(label Feature) (int, bool) {
	if l == nil {
		return -1, false
	}
	if idx, exists := l.idx[label.String()]; exists {
		return idx, true
	}
	return -1, false
}
