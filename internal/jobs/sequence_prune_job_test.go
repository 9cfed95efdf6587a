package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPruner struct {
	mock.Mock
}

func (m *MockPruner) PruneSequences(ctx context.Context, before string) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func newTestJob(p Pruner, retention int) *SequencePruneJob {
	j := NewSequencePruneJob(p, "0 0 3 * * *", retention, time.UTC)
	j.now = func() time.Time { return time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC) }
	return j
}

func TestSequencePruneJob_RunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("DeletesBeforeCutoff", func(t *testing.T) {
		p := new(MockPruner)
		p.On("PruneSequences", ctx, "2024-05-03").Return(int64(4), nil)

		n, err := newTestJob(p, 7).RunOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
		p.AssertExpectations(t)
	})

	t.Run("NeverTouchesToday", func(t *testing.T) {
		j := newTestJob(new(MockPruner), 0)
		assert.Equal(t, "2024-05-09", j.Cutoff())
	})

	t.Run("Error", func(t *testing.T) {
		p := new(MockPruner)
		p.On("PruneSequences", ctx, mock.Anything).Return(int64(0), errors.New("db down"))

		_, err := newTestJob(p, 7).RunOnce(ctx)
		assert.Error(t, err)
	})
}

func TestSequencePruneJob_StartStop(t *testing.T) {
	t.Run("ValidSchedule", func(t *testing.T) {
		j := newTestJob(new(MockPruner), 7)
		require.NoError(t, j.Start())
		j.Stop()
	})

	t.Run("InvalidSchedule", func(t *testing.T) {
		j := NewSequencePruneJob(new(MockPruner), "not a schedule", 7, nil)
		assert.Error(t, j.Start())
	})

	t.Run("Fires", func(t *testing.T) {
		p := new(MockPruner)
		done := make(chan struct{}, 1)
		p.On("PruneSequences", mock.Anything, mock.Anything).Return(int64(0), nil).Run(func(mock.Arguments) {
			select {
			case done <- struct{}{}:
			default:
			}
		})

		j := NewSequencePruneJob(p, "* * * * * *", 7, time.UTC)
		require.NoError(t, j.Start())
		defer j.Stop()

		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("prune job did not fire")
		}
	})
}
