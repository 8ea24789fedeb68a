package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestJournal opens an in-memory journal closed at test end.
func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_InMemory(t *testing.T) {
	j := openTestJournal(t)
	require.NotNil(t, j)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	// Reopening is idempotent: schema already applied.
	j2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j2.Close())
}

func TestWriteDecision_ReadBack(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	d := Decision{
		RunID:     "run-1",
		Seq:       1,
		Goroutine: 42,
		Outcome:   OutcomeSuppressed,
		Value:     "boom",
	}
	require.NoError(t, j.WriteDecision(ctx, d))

	got, err := j.ReadDecisions(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, d, got[0])
}

func TestWriteDecision_InvalidOutcome(t *testing.T) {
	j := openTestJournal(t)

	err := j.WriteDecision(context.Background(), Decision{
		RunID:   "run-1",
		Seq:     1,
		Outcome: "dropped",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid outcome")
}

func TestWriteDecision_Idempotent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	d := Decision{RunID: "run-1", Seq: 1, Outcome: OutcomeEmitted, Value: "x"}
	require.NoError(t, j.WriteDecision(ctx, d))

	// Same (run_id, seq) again: silently ignored, first write wins.
	d.Value = "y"
	require.NoError(t, j.WriteDecision(ctx, d))

	got, err := j.ReadDecisions(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Value)
}

func TestReadDecisions_OrderedBySeq(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	// Write out of order; reads come back by seq.
	for _, seq := range []int64{3, 1, 2} {
		require.NoError(t, j.WriteDecision(ctx, Decision{
			RunID:   "run-1",
			Seq:     seq,
			Outcome: OutcomeEmitted,
			Value:   "v",
		}))
	}

	got, err := j.ReadDecisions(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, int64(2), got[1].Seq)
	assert.Equal(t, int64(3), got[2].Seq)
}

func TestReadDecisions_IsolatedByRun(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.WriteDecision(ctx, Decision{RunID: "a", Seq: 1, Outcome: OutcomeEmitted, Value: "x"}))
	require.NoError(t, j.WriteDecision(ctx, Decision{RunID: "b", Seq: 1, Outcome: OutcomeSuppressed, Value: "y"}))

	got, err := j.ReadDecisions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Value)
}

func TestCountDecisions(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for seq, outcome := range map[int64]string{
		1: OutcomeSuppressed,
		2: OutcomeSuppressed,
		3: OutcomeEmitted,
	} {
		require.NoError(t, j.WriteDecision(ctx, Decision{
			RunID:   "run-1",
			Seq:     seq,
			Outcome: outcome,
			Value:   "v",
		}))
	}

	suppressed, err := j.CountDecisions(ctx, "run-1", OutcomeSuppressed)
	require.NoError(t, err)
	assert.Equal(t, 2, suppressed)

	emitted, err := j.CountDecisions(ctx, "run-1", OutcomeEmitted)
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)

	none, err := j.CountDecisions(ctx, "no-such-run", OutcomeEmitted)
	require.NoError(t, err)
	assert.Equal(t, 0, none)
}

func TestRuns(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.WriteDecision(ctx, Decision{RunID: "b", Seq: 1, Outcome: OutcomeEmitted, Value: "x"}))
	require.NoError(t, j.WriteDecision(ctx, Decision{RunID: "a", Seq: 1, Outcome: OutcomeEmitted, Value: "x"}))
	require.NoError(t, j.WriteDecision(ctx, Decision{RunID: "a", Seq: 2, Outcome: OutcomeEmitted, Value: "x"}))

	runs, err := j.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, runs)
}

func TestNewRunID_UniqueAndSortable(t *testing.T) {
	a := NewRunID()
	b := NewRunID()

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36, "hyphenated UUID")
	// UUIDv7 embeds a timestamp in the most significant bits, so later
	// IDs sort after earlier ones.
	assert.Less(t, a, b)
}
