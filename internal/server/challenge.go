package server

import (
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// Challenge states.
const (
	ChallengePending  = "pending"
	ChallengeAccepted = "accepted"
	ChallengeDeclined = "declined"
	ChallengeExpired  = "expired"
)

var (
	ErrChallengeNotFound  = errors.New("challenge not found or expired")
	ErrChallengeNotYours  = errors.New("challenge is not addressed to you")
	ErrChallengeDuplicate = errors.New("you already have a pending challenge for this game")
)

// Challenge is a pending invitation from one user to another.
type Challenge struct {
	ID        string
	FromID    string
	ToID      string
	GameType  string
	CreatedAt time.Time
	State     string

	timer *quartz.Timer
}

// ChallengeService routes 1:1 invitations with expiry. It carries its
// own lock because expiry timers fire outside the hub's serialization.
type ChallengeService struct {
	mu      sync.Mutex
	clock   quartz.Clock
	ttl     time.Duration
	pending map[string]*Challenge
}

// NewChallengeService creates a service expiring challenges after ttl.
func NewChallengeService(clock quartz.Clock, ttl time.Duration) *ChallengeService {
	return &ChallengeService{
		clock:   clock,
		ttl:     ttl,
		pending: make(map[string]*Challenge),
	}
}

// Send issues a challenge. At most one pending challenge may exist per
// (challenger, game type) pair.
func (s *ChallengeService) Send(fromID, toID, gameType string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.pending {
		if ch.FromID == fromID && ch.GameType == gameType {
			return nil, ErrChallengeDuplicate
		}
	}

	ch := &Challenge{
		ID:        uuid.NewString(),
		FromID:    fromID,
		ToID:      toID,
		GameType:  gameType,
		CreatedAt: s.clock.Now(),
		State:     ChallengePending,
	}
	ch.timer = s.clock.AfterFunc(s.ttl, func() {
		s.expire(ch.ID)
	})
	s.pending[ch.ID] = ch
	return ch, nil
}

// Accept atomically transitions a pending challenge to accepted. Only
// the challenged user may accept.
func (s *ChallengeService) Accept(id, byID string) (*Challenge, error) {
	return s.resolve(id, byID, ChallengeAccepted)
}

// Decline transitions a pending challenge to declined.
func (s *ChallengeService) Decline(id, byID string) (*Challenge, error) {
	return s.resolve(id, byID, ChallengeDeclined)
}

func (s *ChallengeService) resolve(id, byID, state string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.pending[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if ch.ToID != byID {
		return nil, ErrChallengeNotYours
	}
	ch.State = state
	ch.timer.Stop()
	delete(s.pending, id)
	return ch, nil
}

// CancelFor expires every pending challenge a user is party to. Called
// when the user disconnects.
func (s *ChallengeService) CancelFor(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.pending {
		if ch.FromID == userID || ch.ToID == userID {
			ch.State = ChallengeExpired
			ch.timer.Stop()
			delete(s.pending, id)
		}
	}
}

// PendingCount reports how many challenges are live.
func (s *ChallengeService) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *ChallengeService) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.pending[id]; ok {
		ch.State = ChallengeExpired
		delete(s.pending, id)
	}
}
