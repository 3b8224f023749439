package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeSendAndAccept(t *testing.T) {
	mock := quartz.NewMock(t)
	svc := NewChallengeService(mock, 30*time.Second)

	ch, err := svc.Send("u-alice", "u-bob", "checkers")
	require.NoError(t, err)
	assert.Equal(t, ChallengePending, ch.State)
	assert.Equal(t, 1, svc.PendingCount())

	accepted, err := svc.Accept(ch.ID, "u-bob")
	require.NoError(t, err)
	assert.Equal(t, ChallengeAccepted, accepted.State)
	assert.Equal(t, "checkers", accepted.GameType)
	assert.Equal(t, 0, svc.PendingCount())

	_, err = svc.Accept(ch.ID, "u-bob")
	assert.Equal(t, ErrChallengeNotFound, err)
}

func TestChallengeOnlyTargetMayResolve(t *testing.T) {
	mock := quartz.NewMock(t)
	svc := NewChallengeService(mock, 30*time.Second)

	ch, err := svc.Send("u-alice", "u-bob", "war")
	require.NoError(t, err)

	_, err = svc.Accept(ch.ID, "u-alice")
	assert.Equal(t, ErrChallengeNotYours, err)
	_, err = svc.Decline(ch.ID, "u-carol")
	assert.Equal(t, ErrChallengeNotYours, err)
	assert.Equal(t, 1, svc.PendingCount())

	declined, err := svc.Decline(ch.ID, "u-bob")
	require.NoError(t, err)
	assert.Equal(t, ChallengeDeclined, declined.State)
}

func TestChallengeDuplicatePerGameType(t *testing.T) {
	mock := quartz.NewMock(t)
	svc := NewChallengeService(mock, 30*time.Second)

	_, err := svc.Send("u-alice", "u-bob", "checkers")
	require.NoError(t, err)

	_, err = svc.Send("u-alice", "u-carol", "checkers")
	assert.Equal(t, ErrChallengeDuplicate, err)

	// A different game is a separate invitation.
	_, err = svc.Send("u-alice", "u-carol", "war")
	require.NoError(t, err)
	assert.Equal(t, 2, svc.PendingCount())
}

func TestChallengeExpires(t *testing.T) {
	mock := quartz.NewMock(t)
	svc := NewChallengeService(mock, 30*time.Second)

	ch, err := svc.Send("u-alice", "u-bob", "checkers")
	require.NoError(t, err)

	mock.Advance(30 * time.Second).MustWait(context.Background())

	assert.Equal(t, 0, svc.PendingCount())
	_, err = svc.Accept(ch.ID, "u-bob")
	assert.Equal(t, ErrChallengeNotFound, err)

	// Expiry frees the per-game slot for a fresh challenge.
	_, err = svc.Send("u-alice", "u-bob", "checkers")
	require.NoError(t, err)
}

func TestChallengeCancelForDisconnect(t *testing.T) {
	mock := quartz.NewMock(t)
	svc := NewChallengeService(mock, 30*time.Second)

	_, err := svc.Send("u-alice", "u-bob", "checkers")
	require.NoError(t, err)
	_, err = svc.Send("u-carol", "u-alice", "war")
	require.NoError(t, err)
	_, err = svc.Send("u-carol", "u-bob", "mancala")
	require.NoError(t, err)

	svc.CancelFor("u-alice")
	assert.Equal(t, 1, svc.PendingCount())
}
