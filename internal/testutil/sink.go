package testutil

import (
	"sync"

	"github.com/roach88/hush/report"
)

// Sink is a recording report handler for tests.
//
// Installed (via report.Swap) before the interceptor captures its
// original handler, a Sink stands in for stderr: every report the
// interceptor forwards lands here instead of the terminal, where tests
// can count and inspect it.
//
// Thread-safety: safe for concurrent use; reports may arrive from any
// panicking goroutine.
type Sink struct {
	mu      sync.Mutex
	reports []*report.Report
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Handle records a report. It has the report.Handler signature; install
// it with report.Swap(sink.Handle).
func (s *Sink) Handle(r *report.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
}

// Len returns the number of recorded reports.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// Reports returns a copy of the recorded reports in arrival order.
func (s *Sink) Reports() []*report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*report.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Values returns the panic values of the recorded reports in arrival order.
func (s *Sink) Values() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make([]any, len(s.reports))
	for i, r := range s.reports {
		values[i] = r.Value
	}
	return values
}

// Reset discards all recorded reports.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = nil
}
