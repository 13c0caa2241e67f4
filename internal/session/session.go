// Package session keeps each chat's position in a multi-step conversation.
//
// Sessions live in memory only, in an expiring LRU keyed by chat id. A chat
// with no entry is idle; storing an idle session removes the entry.
package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/garyellow/xoso-linebot-go/internal/metrics"
)

// State is the step a chat is waiting on.
type State int

const (
	StateIdle State = iota
	StateAwaitXien
	StateAwaitCangNumbers
	StateAwaitCangPrefixes
	StateAwaitDao
	StateAwaitPhongThuy
	StateAwaitResultDate
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitXien:
		return "await_xien"
	case StateAwaitCangNumbers:
		return "await_cang_numbers"
	case StateAwaitCangPrefixes:
		return "await_cang_prefixes"
	case StateAwaitDao:
		return "await_dao"
	case StateAwaitPhongThuy:
		return "await_phongthuy"
	case StateAwaitResultDate:
		return "await_result_date"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CangMode selects which numbers a guided merge keeps.
type CangMode int

const (
	// Cang3D keeps 2-digit numbers, producing 3-digit results.
	Cang3D CangMode = iota + 1
	// Cang4D keeps 3-digit numbers, producing 4-digit results.
	Cang4D
)

// NumberLength is the token length this mode keeps.
func (m CangMode) NumberLength() int {
	if m == Cang4D {
		return 3
	}
	return 2
}

func (m CangMode) String() string {
	switch m {
	case Cang3D:
		return "3D"
	case Cang4D:
		return "4D"
	default:
		return "?"
	}
}

// Session is one chat's pending step and the data collected so far.
type Session struct {
	State State

	// XienArity is set while waiting for combination tokens.
	XienArity int

	// CangMode and Numbers carry a guided merge between its two steps.
	CangMode CangMode
	Numbers  []string

	UpdatedAt time.Time
}

// Idle is the zero session.
func Idle() Session { return Session{} }

// AwaitXien waits for tokens to combine n at a time.
func AwaitXien(n int) Session { return Session{State: StateAwaitXien, XienArity: n} }

// AwaitCangNumbers waits for the numbers of a guided merge.
func AwaitCangNumbers(mode CangMode) Session {
	return Session{State: StateAwaitCangNumbers, CangMode: mode}
}

// AwaitCangPrefixes waits for the prefixes to merge onto numbers.
func AwaitCangPrefixes(mode CangMode, numbers []string) Session {
	return Session{State: StateAwaitCangPrefixes, CangMode: mode, Numbers: slices.Clone(numbers)}
}

// AwaitDao waits for a number to permute.
func AwaitDao() Session { return Session{State: StateAwaitDao} }

// AwaitPhongThuy waits for a date or can-chi name.
func AwaitPhongThuy() Session { return Session{State: StateAwaitPhongThuy} }

// AwaitResultDate waits for a draw date.
func AwaitResultDate() Session { return Session{State: StateAwaitResultDate} }

// IsIdle reports whether nothing is pending.
func (s Session) IsIdle() bool { return s.State == StateIdle }

// Store holds sessions for up to capacity chats, each for at most ttl after
// its last update.
type Store struct {
	cache   *expirable.LRU[string, Session]
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewStore creates a session store.
func NewStore(capacity int, ttl time.Duration, m *metrics.Metrics) *Store {
	// The eviction callback runs under the cache lock, so the gauge is
	// refreshed by Set and Reset instead.
	return &Store{
		cache:   expirable.NewLRU[string, Session](capacity, nil, ttl),
		metrics: m,
		now:     time.Now,
	}
}

// Get returns the chat's session, or Idle.
func (s *Store) Get(chatID string) Session {
	if sess, ok := s.cache.Get(chatID); ok {
		return sess
	}
	return Idle()
}

// Set stores sess for the chat; an idle session clears it.
func (s *Store) Set(chatID string, sess Session) {
	if chatID == "" {
		return
	}
	if sess.IsIdle() {
		s.Reset(chatID)
		return
	}
	sess.UpdatedAt = s.now()
	s.cache.Add(chatID, sess)
	s.report()
}

// Reset forgets the chat's session and reports whether one existed.
func (s *Store) Reset(chatID string) bool {
	removed := s.cache.Remove(chatID)
	s.report()
	return removed
}

// Len returns the number of non-idle chats.
func (s *Store) Len() int {
	return s.cache.Len()
}

func (s *Store) report() {
	if s.metrics != nil {
		s.metrics.SetSessionsActive(s.cache.Len())
	}
}
