package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestGetParticipant_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetParticipant(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertParticipant_Overwrites(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.UpsertParticipant(1, "first"))
	require.NoError(t, s.UpsertParticipant(1, "second"))

	p, err := s.GetParticipant(1)
	require.NoError(t, err)
	assert.Equal(t, "second", p.Nickname)
	assert.Equal(t, int64(1), p.UserID)
}

func TestCreateEntry_RequiresNickname(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreateEntry(1, 20)
	assert.ErrorIs(t, err, ErrNoNickname)
}

func TestCreateEntry_Pending(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "nick"))

	e, err := s.CreateEntry(1, 20)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, 20, e.Amount)
	assert.Equal(t, int64(1), e.UserID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestCreateEntry_RefusesSecondOpen(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "nick"))

	_, err := s.CreateEntry(1, 20)
	require.NoError(t, err)

	_, err = s.CreateEntry(1, 30)
	assert.ErrorIs(t, err, ErrOpenEntry)

	// Still blocked after proof submission, only a terminal status frees it.
	_, err = s.MarkProofSubmitted(1)
	require.NoError(t, err)
	_, err = s.CreateEntry(1, 30)
	assert.ErrorIs(t, err, ErrOpenEntry)
}

func TestCurrentEntry_PicksNewest(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "nick"))

	first, err := s.CreateEntry(1, 15)
	require.NoError(t, err)
	_, err = s.CloseEntry(1, StatusRejected)
	require.NoError(t, err)

	second, err := s.CreateEntry(1, 50)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	cur, err := s.CurrentEntry(1)
	require.NoError(t, err)
	assert.Equal(t, second.ID, cur.ID)
	assert.Equal(t, StatusPending, cur.Status)
}

func TestCurrentEntry_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CurrentEntry(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkProofSubmitted(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "nick"))
	_, err := s.CreateEntry(1, 20)
	require.NoError(t, err)

	e, err := s.MarkProofSubmitted(1)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingConfirmation, e.Status)

	// Resubmitting a screenshot is a no-op transition to the same state.
	e, err = s.MarkProofSubmitted(1)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingConfirmation, e.Status)
}

func TestMarkProofSubmitted_NoOpenEntry(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.MarkProofSubmitted(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkProofSubmitted_IgnoresTerminal(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "nick"))
	_, err := s.CreateEntry(1, 20)
	require.NoError(t, err)
	_, err = s.CloseEntry(1, StatusPaid)
	require.NoError(t, err)

	// A late photo must not reopen a paid entry.
	_, err = s.MarkProofSubmitted(1)
	assert.ErrorIs(t, err, ErrNotFound)

	cur, err := s.CurrentEntry(1)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, cur.Status)
}

func TestCloseEntry(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "nick"))
	_, err := s.CreateEntry(1, 20)
	require.NoError(t, err)

	e, err := s.CloseEntry(1, StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, e.Status)

	// No open entry left to close.
	_, err = s.CloseEntry(1, StatusRejected)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseEntry_RequiresTerminalStatus(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "nick"))
	_, err := s.CreateEntry(1, 20)
	require.NoError(t, err)

	_, err = s.CloseEntry(1, StatusPending)
	assert.Error(t, err)
}

func TestCloseEntry_PerParticipantIsolation(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "alice"))
	require.NoError(t, s.UpsertParticipant(2, "bob"))

	_, err := s.CreateEntry(1, 20)
	require.NoError(t, err)
	_, err = s.CreateEntry(2, 30)
	require.NoError(t, err)

	_, err = s.CloseEntry(1, StatusPaid)
	require.NoError(t, err)

	other, err := s.CurrentEntry(2)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, other.Status)
}

func TestCloseEntry_TargetsOnlyCurrentEntry(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "nick"))

	first, err := s.CreateEntry(1, 15)
	require.NoError(t, err)
	_, err = s.CloseEntry(1, StatusRejected)
	require.NoError(t, err)

	_, err = s.CreateEntry(1, 20)
	require.NoError(t, err)
	_, err = s.CloseEntry(1, StatusPaid)
	require.NoError(t, err)

	entries, err := s.ListEntries(1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, StatusPaid, entries[0].Status)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.Equal(t, StatusRejected, entries[1].Status)
}

func TestListEntries_NewestFirst(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.UpsertParticipant(1, "nick"))

	for _, amount := range []int{15, 20, 30} {
		_, err := s.CreateEntry(1, amount)
		require.NoError(t, err)
		_, err = s.CloseEntry(1, StatusRejected)
		require.NoError(t, err)
	}

	entries, err := s.ListEntries(1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 30, entries[0].Amount)
	assert.Equal(t, 15, entries[2].Amount)
}
