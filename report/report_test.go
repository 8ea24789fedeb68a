package report

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapFor installs h for the duration of the test and restores the
// previous handler afterwards. Keeps the process-wide slot clean across
// tests in this binary.
func swapFor(t *testing.T, h Handler) {
	t.Helper()
	prev := Swap(h)
	t.Cleanup(func() { Swap(prev) })
}

func TestSwap_ReturnsPrevious(t *testing.T) {
	var called bool
	first := Handler(func(*Report) { called = true })

	orig := Swap(first)
	t.Cleanup(func() { Swap(orig) })

	// Swapping back returns first, still callable.
	returned := Swap(orig)
	require.NotNil(t, returned)
	returned(&Report{})
	assert.True(t, called)
}

func TestEmit_RoutesThroughHandler(t *testing.T) {
	var got *Report
	swapFor(t, func(r *Report) { got = r })

	sent := &Report{Goroutine: 7, Value: "boom"}
	Emit(sent)

	require.NotNil(t, got)
	assert.Same(t, sent, got, "report must be forwarded unmodified")
}

func TestEmit_NilHandlerDiscards(t *testing.T) {
	swapFor(t, nil)
	assert.NotPanics(t, func() {
		Emit(&Report{Value: "dropped"})
	})
}

func TestEmit_ConcurrentWithSwap(t *testing.T) {
	swapFor(t, func(*Report) {})

	// Emit and Swap racing must not corrupt the slot.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			Emit(&Report{Value: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			Swap(Swap(func(*Report) {}))
		}
	}()
	wg.Wait()
}

func TestStderr_WritesFormattedReport(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })

	Stderr(&Report{Value: "boom", Stack: []byte("goroutine 7 [running]:\nmain.main()")})

	out := buf.String()
	assert.Equal(t, "panic: boom\n\ngoroutine 7 [running]:\nmain.main()\n", out)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		report *Report
		want   string
	}{
		{
			name:   "string value with stack",
			report: &Report{Value: "boom", Stack: []byte("goroutine 1 [running]:\nf()\n")},
			want:   "panic: boom\n\ngoroutine 1 [running]:\nf()\n",
		},
		{
			name:   "error-ish value no stack",
			report: &Report{Value: 42},
			want:   "panic: 42\n",
		},
		{
			name:   "nil value",
			report: &Report{Value: nil},
			want:   "panic: <nil>\n",
		},
		{
			name:   "stack without trailing newline",
			report: &Report{Value: "x", Stack: []byte("goroutine 1 [running]:")},
			want:   "panic: x\n\ngoroutine 1 [running]:\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Format(tt.report)))
		})
	}
}
