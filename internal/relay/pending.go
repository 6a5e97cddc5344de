package relay

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultPendingTTL = 24 * time.Hour

// PendingMessage is an inbound message kept so its reply can be regenerated.
type PendingMessage struct {
	ID        string
	UserID    string
	Text      string
	CreatedAt time.Time
}

type PendingMessages struct {
	mu   sync.RWMutex
	data map[string]PendingMessage
	ttl  time.Duration
	now  func() time.Time
}

func NewPendingMessages(ttl time.Duration) *PendingMessages {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &PendingMessages{
		data: make(map[string]PendingMessage),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Remember stores text for userID and returns the short ID used in button payloads.
func (p *PendingMessages) Remember(userID, text string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for k, msg := range p.data {
		if p.isExpired(msg, now) {
			delete(p.data, k)
		}
	}
	p.data[id] = PendingMessage{ID: id, UserID: userID, Text: text, CreatedAt: now}
	return id
}

func (p *PendingMessages) Lookup(id string) (PendingMessage, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	msg, ok := p.data[id]
	if !ok || p.isExpired(msg, p.now()) {
		return PendingMessage{}, false
	}
	return msg, true
}

func (p *PendingMessages) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.data)
}

func (p *PendingMessages) isExpired(msg PendingMessage, now time.Time) bool {
	return now.Sub(msg.CreatedAt) > p.ttl
}
