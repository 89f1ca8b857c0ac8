package soundfont

// SetShared replaces the process-wide handle for tests.
func SetShared(h *Handle) (restore func()) {
	mu.Lock()
	prev := shared
	shared = h
	mu.Unlock()
	return func() {
		mu.Lock()
		shared = prev
		mu.Unlock()
	}
}

// NewTestHandle returns a handle that wraps no bank.
func NewTestHandle() *Handle {
	return &Handle{}
}
