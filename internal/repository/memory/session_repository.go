package memory

import (
	"sync"
	"time"

	"trading-chat-be/internal/repository/contract"
	"trading-chat-be/pkg/spreadsheet"
	"trading-chat-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache       *cache.Cache
	maxMessages int

	createMu sync.Mutex

	locksMu sync.Mutex
	locks   map[string]*userLock
}

// userLock lives only while someone holds or waits for it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// Ensure SessionRepository implements ISessionRepository
var _ contract.ISessionRepository = &SessionRepository{}

// NewSessionRepository creates the process-wide store. idleTTL of zero keeps
// sessions until the process exits; otherwise a session untouched for idleTTL
// is evicted. maxMessages of zero leaves transcripts unbounded.
func NewSessionRepository(idleTTL time.Duration, maxMessages int) *SessionRepository {
	expiration := cache.NoExpiration
	var cleanup time.Duration
	if idleTTL > 0 {
		expiration = idleTTL
		cleanup = idleTTL / 2
	}

	return &SessionRepository{
		cache:       cache.New(expiration, cleanup),
		maxMessages: maxMessages,
		locks:       make(map[string]*userLock),
	}
}

func (r *SessionRepository) get(userId string) (*store.Session, bool) {
	if x, found := r.cache.Get(userId); found {
		return x.(*store.Session), true
	}
	return nil, false
}

// getOrCreate returns the user's session, creating an empty one if needed,
// and refreshes its expiry.
func (r *SessionRepository) getOrCreate(userId string) *store.Session {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	session, ok := r.get(userId)
	if !ok {
		session = store.NewSession(userId)
	}
	r.cache.Set(userId, session, cache.DefaultExpiration)
	return session
}

func (r *SessionRepository) GetOrCreateTranscript(userId string, seedSystemPrompt string) *store.Session {
	session := r.getOrCreate(userId)
	session.Seed(seedSystemPrompt)
	return session
}

func (r *SessionRepository) Append(userId string, role string, text string) error {
	session, ok := r.get(userId)
	if !ok {
		return store.ErrTranscriptNotFound
	}
	if err := session.Append(role, text, r.maxMessages); err != nil {
		return err
	}
	r.cache.Set(userId, session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Recent(userId string, n int) []store.Message {
	session, ok := r.get(userId)
	if !ok {
		return []store.Message{}
	}
	return session.Recent(n)
}

func (r *SessionRepository) SetRecords(userId string, records []spreadsheet.Record) {
	r.getOrCreate(userId).SetRecords(records)
}

func (r *SessionRepository) GetRecords(userId string) ([]spreadsheet.Record, bool) {
	session, ok := r.get(userId)
	if !ok {
		return nil, false
	}
	return session.Records()
}

func (r *SessionRepository) Lock(userId string) func() {
	r.locksMu.Lock()
	l, ok := r.locks[userId]
	if !ok {
		l = &userLock{}
		r.locks[userId] = l
	}
	l.refs++
	r.locksMu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()

			r.locksMu.Lock()
			defer r.locksMu.Unlock()
			l.refs--
			if l.refs == 0 {
				delete(r.locks, userId)
			}
		})
	}
}

func (r *SessionRepository) lockCount() int {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	return len(r.locks)
}

// Count returns the number of live sessions.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
