package astigesture

// Smoothing defaults
const (
	DefaultSmoothingSize = 5
	minSmoothingHistory  = 3
)

// SmoothingBuffer stabilizes noisy per-frame labels with a majority vote over the last labels.
// It is owned by a single gesture loop and is not safe for concurrent use.
type SmoothingBuffer struct {
	b    []string
	n    int // Number of labels in the window
	next int // Index of the next write
}

// NewSmoothingBuffer creates a new smoothing buffer holding at most size labels
func NewSmoothingBuffer(size int) *SmoothingBuffer {
	if size < 1 {
		size = DefaultSmoothingSize
	}
	return &SmoothingBuffer{b: make([]string, size)}
}

// Len returns the number of labels currently in the window
func (s *SmoothingBuffer) Len() int { return s.n }

// Size returns the window capacity
func (s *SmoothingBuffer) Size() int { return len(s.b) }

// Reset empties the window
func (s *SmoothingBuffer) Reset() {
	for idx := range s.b {
		s.b[idx] = ""
	}
	s.n = 0
	s.next = 0
}

// Push appends the label to the window, evicting the oldest one when full, and returns the
// stabilized label
func (s *SmoothingBuffer) Push(label string) string {
	// Append
	s.b[s.next] = label
	s.next = (s.next + 1) % len(s.b)
	if s.n < len(s.b) {
		s.n++
	}

	// Not enough history
	if s.n < minSmoothingHistory {
		return label
	}
	return s.vote()
}

// vote returns the most frequent label. Ties are won by the most recently seen label.
func (s *SmoothingBuffer) vote() (label string) {
	// Count
	cs := make(map[string]int, s.n)
	for idx := 0; idx < s.n; idx++ {
		cs[s.at(idx)]++
	}

	// Walk from newest to oldest so that the first max found is the most recent one
	max := 0
	for idx := s.n - 1; idx >= 0; idx-- {
		l := s.at(idx)
		if c := cs[l]; c > max {
			max = c
			label = l
		}
	}
	return
}

// at returns the idx-th label, 0 being the oldest
func (s *SmoothingBuffer) at(idx int) string {
	start := s.next - s.n
	if start < 0 {
		start += len(s.b)
	}
	return s.b[(start+idx)%len(s.b)]
}
