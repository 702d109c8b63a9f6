// Package chain dispatches observed contract events to registered listeners.
// It stands in for a blockchain client: events are published into the hub by
// whatever watches the chain.
package chain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// Kind is the contract event type.
type Kind string

const (
	// KindMint is emitted when a wallet mints the challenge NFT.
	KindMint Kind = "mint"
	// KindExploit is emitted when a wallet drains the challenge contract.
	KindExploit Kind = "exploit"
)

// ErrUnknownKind is returned by Publish for unsupported event kinds.
var ErrUnknownKind = errors.New("unknown event kind")

// Event is one observed contract event.
type Event struct {
	Kind    Kind
	Address string
	TxHash  string
	At      time.Time
}

// Handler reacts to a matching event.
type Handler func(ctx context.Context, ev Event) error

type listener struct {
	kind    Kind
	address string // empty matches any address
	fn      Handler
}

// Hub keeps listeners registered by the API and fans events out to them.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uuid.UUID]listener
	log       *zap.Logger
}

// NewHub returns an empty hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{listeners: make(map[uuid.UUID]listener), log: log}
}

// Listen registers fn for events of kind. A non-empty address restricts the
// listener to events from that address (compared case-insensitively). The
// address is not validated.
func (h *Hub) Listen(kind Kind, address string, fn Handler) uuid.UUID {
	id := uuid.Must(uuid.NewV4())
	h.mu.Lock()
	h.listeners[id] = listener{kind: kind, address: strings.ToLower(strings.TrimSpace(address)), fn: fn}
	h.mu.Unlock()
	h.log.Debug("listener created", zap.String("kind", string(kind)), zap.String("address", address), zap.Stringer("id", id))
	return id
}

// Len reports how many listeners are registered.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Publish delivers ev to every matching listener and returns how many ran.
// Handler errors are joined; one failing handler does not stop the others.
func (h *Hub) Publish(ctx context.Context, ev Event) (int, error) {
	if ev.Kind != KindMint && ev.Kind != KindExploit {
		return 0, ErrUnknownKind
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	addr := strings.ToLower(strings.TrimSpace(ev.Address))

	h.mu.RLock()
	matched := make([]Handler, 0, len(h.listeners))
	for _, l := range h.listeners {
		if l.kind == ev.Kind && (l.address == "" || l.address == addr) {
			matched = append(matched, l.fn)
		}
	}
	h.mu.RUnlock()

	var errList []error
	for _, fn := range matched {
		if err := fn(ctx, ev); err != nil {
			errList = append(errList, err)
		}
	}
	if err := errors.Join(errList...); err != nil {
		h.log.Warn("event handlers failed", zap.String("kind", string(ev.Kind)), zap.Error(err))
		return len(matched), err
	}
	return len(matched), nil
}
