package cart

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/akosarev/storefront/internal/events"
	"github.com/akosarev/storefront/internal/logging"
	"github.com/akosarev/storefront/internal/models"
	"github.com/akosarev/storefront/internal/notify"
)

// API is the slice of the commerce client the store depends on.
type API interface {
	ViewCart(ctx context.Context) ([]models.LineItem, error)
	UpdateQuantity(ctx context.Context, lineItemID string, quantity int) error
	DeleteLineItem(ctx context.Context, lineItemID string) error
}

// ConfirmFunc asks the user to confirm an irreversible action. Removal only
// proceeds on an affirmative result; the caller decides how to ask (modal,
// prompt, test stub).
type ConfirmFunc func(ctx context.Context, lineItemID string) bool

type Deps struct {
	Notifier notify.Notifier
	Confirm  ConfirmFunc
	Events   *events.Producer // optional
	UserID   string
}

// Store holds one user's cart as last fetched from the commerce API. Every
// mutation round-trips to the server and then re-fetches the canonical list;
// the store never keeps optimistic local edits. Mutations on the same line
// item fired concurrently are last-writer-wins at the server, which the
// store preserves rather than coordinates.
type Store struct {
	api  API
	deps Deps

	mu       sync.RWMutex
	items    []models.LineItem
	seq      uint64 // last issued fetch
	applied  uint64 // fetch whose result is the current snapshot
	inflight map[string]int

	sfg singleflight.Group
}

func NewStore(api API, deps Deps) *Store {
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{}
	}
	return &Store{
		api:      api,
		deps:     deps,
		inflight: make(map[string]int),
	}
}

// Snapshot returns a deep copy of the current line-item list.
func (s *Store) Snapshot() []models.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneItems(s.items)
}

// Subtotal derives the current cart subtotal from the snapshot.
func (s *Store) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Subtotal(s.items)
}

// InFlight reports whether a mutation on the line item is still between
// request and re-fetch, for UI busy indicators.
func (s *Store) InFlight(lineItemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight[lineItemID] > 0
}

// FetchCart replaces the snapshot wholesale with the server's canonical
// list. On failure the previous snapshot stays untouched and the error is
// surfaced; there is no automatic retry. Concurrent callers may share one
// request, but never one that was already in flight when they arrived: the
// re-fetch after a mutation always samples the server after that mutation
// landed, so a response from before it can never satisfy the re-sync.
func (s *Store) FetchCart(ctx context.Context) error {
	s.mu.Lock()
	floor := s.seq
	s.mu.Unlock()

	for {
		v, err, _ := s.sfg.Do("fetch", func() (interface{}, error) {
			s.mu.Lock()
			s.seq++
			seq := s.seq
			s.mu.Unlock()

			items, err := s.api.ViewCart(ctx)
			if err != nil {
				s.deps.Notifier.Notify(ctx, notify.SeverityError, "could not load cart")
				logging.FromContext(ctx).Error("cart fetch failed", "error", err)
				return nil, err
			}

			if s.applyFetch(seq, items) {
				s.publish(ctx, map[string]any{
					"type":   "cart_synced",
					"userID": s.deps.UserID,
					"items":  len(items),
				})
			}
			return seq, nil
		})
		if err != nil {
			return err
		}
		if seq, ok := v.(uint64); ok && seq > floor {
			return nil
		}
		// joined a fetch issued before this call; sample the server again
		s.sfg.Forget("fetch")
	}
}

// applyFetch installs a fetch result unless a newer fetch already replaced
// the snapshot.
func (s *Store) applyFetch(seq uint64, items []models.LineItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		return false
	}
	s.items = items
	s.applied = seq
	return true
}

// IncreaseQuantity bumps the line item to current+1 and re-syncs. No upper
// bound is enforced here; stock limits live on the server.
func (s *Store) IncreaseQuantity(ctx context.Context, lineItemID string, current int) error {
	return s.mutate(ctx, lineItemID, func(ctx context.Context) error {
		return s.api.UpdateQuantity(ctx, lineItemID, current+1)
	}, map[string]any{
		"type":       "quantity_updated",
		"userID":     s.deps.UserID,
		"lineItemID": lineItemID,
		"quantity":   current + 1,
	})
}

// DecreaseQuantity lowers the line item to current-1 and re-syncs. With a
// current quantity of 1 no request is sent at all: removal is an explicit
// user action, never a side effect of decrementing.
func (s *Store) DecreaseQuantity(ctx context.Context, lineItemID string, current int) error {
	if current < 2 {
		return nil
	}
	return s.mutate(ctx, lineItemID, func(ctx context.Context) error {
		return s.api.UpdateQuantity(ctx, lineItemID, current-1)
	}, map[string]any{
		"type":       "quantity_updated",
		"userID":     s.deps.UserID,
		"lineItemID": lineItemID,
		"quantity":   current - 1,
	})
}

// RemoveLineItem deletes the line item after the confirmation capability
// approves it. Without an affirmative answer nothing is sent.
func (s *Store) RemoveLineItem(ctx context.Context, lineItemID string) error {
	if s.deps.Confirm == nil || !s.deps.Confirm(ctx, lineItemID) {
		logging.FromContext(ctx).Debug("cart removal not confirmed", "line_item", lineItemID)
		return nil
	}
	return s.mutate(ctx, lineItemID, func(ctx context.Context) error {
		return s.api.DeleteLineItem(ctx, lineItemID)
	}, map[string]any{
		"type":       "item_removed",
		"userID":     s.deps.UserID,
		"lineItemID": lineItemID,
	})
}

func (s *Store) mutate(ctx context.Context, lineItemID string, call func(context.Context) error, event map[string]any) error {
	s.track(lineItemID, 1)
	defer s.track(lineItemID, -1)

	if err := call(ctx); err != nil {
		s.deps.Notifier.Notify(ctx, notify.SeverityError, "cart update failed")
		logging.FromContext(ctx).Error("cart mutation failed", "line_item", lineItemID, "error", err)
		return err
	}

	s.publish(ctx, event)
	return s.FetchCart(ctx)
}

func (s *Store) track(lineItemID string, delta int) {
	s.mu.Lock()
	s.inflight[lineItemID] += delta
	if s.inflight[lineItemID] <= 0 {
		delete(s.inflight, lineItemID)
	}
	s.mu.Unlock()
}

func (s *Store) publish(ctx context.Context, event map[string]any) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.Publish(ctx, s.deps.UserID, event); err != nil {
		logging.FromContext(ctx).Error("cart event publish failed", "error", err)
	}
}
