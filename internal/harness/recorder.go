package harness

import (
	"sync"

	"github.com/roach88/hush"
	"github.com/roach88/hush/internal/testutil"
	"github.com/roach88/hush/report"
)

var (
	// recorder receives every report the interceptor forwards. It
	// stands in for stderr for the lifetime of the process.
	recorder = testutil.NewSink()

	recorderOnce sync.Once
)

// ensureRecorder installs the recorder as the report handler and then
// forces the interceptor to capture it as its original handler, by
// acquiring and immediately releasing a throwaway scope.
//
// Must run before any other hush use in the process; see the package
// documentation.
func ensureRecorder() {
	recorderOnce.Do(func() {
		report.Swap(recorder.Handle)
		hush.ThisGoroutine().Release()
	})
}
