package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// RunThreadStoreContract verifies that a ThreadStore implementation honors
// the interface contract. Every adapter runs this suite.
func RunThreadStoreContract(t *testing.T, store ThreadStore) {
	ctx := context.Background()
	threadID := "contract-thread-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(threadID)
		state.UserQuery = "what is the cancellation policy?"
		state.Intent = domain.IntentPolicy
		state.Messages = append(state.Messages, domain.Message{
			ID:        "m1",
			Role:      domain.RoleUser,
			Text:      state.UserQuery,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		})

		require.NoError(t, store.Save(ctx, threadID, state))

		loaded, err := store.Load(ctx, threadID)
		require.NoError(t, err)
		assert.Equal(t, threadID, loaded.ThreadID)
		assert.Equal(t, domain.IntentPolicy, loaded.Intent)
		require.Len(t, loaded.Messages, 1)
		assert.Equal(t, "m1", loaded.Messages[0].ID)
	})

	t.Run("Interrupt round trip", func(t *testing.T) {
		state := domain.NewState(threadID)
		state.UIPhase = domain.PhaseSelectingTime
		state.AvailableSlots = []domain.Slot{
			{ID: "s1", Start: time.Now().UTC().Truncate(time.Second), End: time.Now().UTC().Add(30 * time.Minute).Truncate(time.Second), Provider: "Dr. Osei"},
		}
		state.PendingInterrupt = &domain.Interrupt{
			Kind:       domain.InterruptSelectTime,
			Slots:      state.AvailableSlots,
			Mandatory:  true,
			ResumeNode: "confirm",
		}

		require.NoError(t, store.Save(ctx, threadID, state))

		loaded, err := store.Load(ctx, threadID)
		require.NoError(t, err)
		require.NotNil(t, loaded.PendingInterrupt)
		assert.Equal(t, domain.InterruptSelectTime, loaded.PendingInterrupt.Kind)
		assert.True(t, loaded.PendingInterrupt.Mandatory)
		assert.Equal(t, "confirm", loaded.PendingInterrupt.ResumeNode)
		require.Len(t, loaded.PendingInterrupt.Slots, 1)
	})

	t.Run("Last write wins", func(t *testing.T) {
		first := domain.NewState(threadID)
		first.UserQuery = "first"
		require.NoError(t, store.Save(ctx, threadID, first))

		second := domain.NewState(threadID)
		second.UserQuery = "second"
		require.NoError(t, store.Save(ctx, threadID, second))

		loaded, err := store.Load(ctx, threadID)
		require.NoError(t, err)
		assert.Equal(t, "second", loaded.UserQuery)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+threadID)
		assert.ErrorIs(t, err, domain.ErrThreadNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, threadID, domain.NewState(threadID)))
		require.NoError(t, store.Delete(ctx, threadID))

		_, err := store.Load(ctx, threadID)
		assert.ErrorIs(t, err, domain.ErrThreadNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := threadID + "-1"
		id2 := threadID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		threads, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, threads, id1)
		assert.Contains(t, threads, id2)
	})
}
