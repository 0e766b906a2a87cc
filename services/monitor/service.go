// Package monitor tracks a set of product listings over time: it fetches
// snapshots through a Fetcher, keeps a capped observation history per item,
// decides which changes matter and fans those out to registered callbacks.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"shelfwatch/lib/historystore"
	"shelfwatch/lib/product"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/monitor")

// Fetcher retrieves the current snapshot of one listing. Implementations own
// their timeouts; errors are reported uniformly regardless of cause.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*product.Product, error)
}

// Callback receives snapshots whose change from the previous observation was
// significant. Callbacks run synchronously in registration order; one
// failing or panicking never affects the others.
type Callback func(ctx context.Context, p product.Product) error

// observations kept per item, oldest pruned first
const historyCap = 100

type Options struct {
	// zero value falls back to DefaultChangePolicy
	Policy ChangePolicy
	// bounds of the randomized pause between items within a round,
	// MaxItemDelay <= 0 disables the pause
	MinItemDelay time.Duration
	MaxItemDelay time.Duration
	// configured identifiers, unioned into the watch list at the start of
	// every round. Removing one with RemoveItem only lasts until the next
	// round; use SetTargets to drop it for good.
	Targets []string
}

type Service struct {
	fetcher Fetcher
	store   historystore.Store
	options Options

	mu        sync.Mutex
	targets   map[string]struct{}
	watched   map[string]struct{}
	history   map[string][]product.Observation
	callbacks []Callback
}

// NewService loads any persisted history and starts watching the configured
// targets. A store that cannot be read is logged and treated as empty, it
// never prevents startup.
func NewService(ctx context.Context, fetcher Fetcher, store historystore.Store, options Options) *Service {
	if options.Policy == (ChangePolicy{}) {
		options.Policy = DefaultChangePolicy
	}

	history, err := store.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "could not load history, starting empty", "err", err)
		history = map[string][]product.Observation{}
	}

	s := &Service{
		fetcher: fetcher,
		store:   store,
		options: options,
		targets: map[string]struct{}{},
		watched: map[string]struct{}{},
		history: history,
	}
	for _, id := range options.Targets {
		s.targets[id] = struct{}{}
		s.addLocked(id)
	}
	return s
}

// AddItem starts watching an id. Adding one twice is a no-op.
func (s *Service) AddItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(id)
}

func (s *Service) addLocked(id string) {
	if _, ok := s.watched[id]; ok {
		return
	}
	s.watched[id] = struct{}{}
	slog.Info("watching item", "id", id)
}

// RemoveItem stops watching an id and discards its history, so adding it
// back later counts as a first observation again. Removing an id that is
// not watched is a no-op.
func (s *Service) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Service) removeLocked(id string) {
	if _, ok := s.watched[id]; !ok {
		return
	}
	delete(s.watched, id)
	delete(s.history, id)
	slog.Info("stopped watching item", "id", id)
}

// SetTargets replaces the configured identifier set, typically after a
// config reload. Identifiers no longer configured stop being watched and
// lose their history; new ones are picked up by the next round.
func (s *Service) SetTargets(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.targets {
		if _, ok := next[id]; !ok {
			s.removeLocked(id)
		}
	}
	s.targets = next
	for _, id := range ids {
		s.addLocked(id)
	}
}

// RegisterCallback appends a callback to the fan-out list. There is no
// deduplication; registering twice means being called twice.
func (s *Service) RegisterCallback(cb Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// WatchedItems returns the watch list in the order rounds iterate it.
func (s *Service) WatchedItems() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.watched))
	for id := range s.watched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// History returns a copy of the item's observations, oldest first.
func (s *Service) History(id string) []product.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	observations := make([]product.Observation, len(s.history[id]))
	copy(observations, s.history[id])
	return observations
}

// CheckItem fetches the current snapshot of id, appends it to history and
// fans a significant change out to the callbacks. A failed fetch leaves
// history untouched and reports the error.
func (s *Service) CheckItem(ctx context.Context, id string) (*product.Product, error) {
	ctx, span := tracer.Start(ctx, "CheckItem")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	p, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	cur := p.Observation()

	s.mu.Lock()
	var prev *product.Observation
	if tail := s.history[id]; len(tail) > 0 {
		last := tail[len(tail)-1]
		prev = &last
	}
	appended := append(s.history[id], cur)
	if len(appended) > historyCap {
		appended = appended[len(appended)-historyCap:]
	}
	s.history[id] = appended
	significant := s.options.Policy.Significant(prev, cur)
	callbacks := make([]Callback, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	slog.DebugContext(
		ctx, "checked item",
		"id", id,
		"availability", p.Availability,
		"price", p.PriceLabel(),
	)
	if significant {
		slog.InfoContext(
			ctx, "significant change",
			"id", id,
			"availability", p.Availability,
			"price", p.PriceLabel(),
		)
		for _, cb := range callbacks {
			runCallback(ctx, cb, *p)
		}
	}
	return p, nil
}

func runCallback(ctx context.Context, cb Callback, p product.Product) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "callback panicked", "id", p.ID, "panic", r)
		}
	}()
	err := cb(ctx, p)
	if err != nil {
		slog.ErrorContext(ctx, "callback failed", "id", p.ID, "err", err)
	}
}

// CheckAll folds the configured targets back into the watch list, then runs
// one round over it in a stable order, pausing between items per the
// configured delay bounds. The returned map has an entry per watched id with
// nil marking a failed fetch. History is persisted once at the end of the
// round no matter how many items failed.
func (s *Service) CheckAll(ctx context.Context) map[string]*product.Product {
	ctx, span := tracer.Start(ctx, "CheckAll")
	defer span.End()

	s.mu.Lock()
	for id := range s.targets {
		s.addLocked(id)
	}
	s.mu.Unlock()

	ids := s.WatchedItems()
	span.SetAttributes(attribute.Int("items", len(ids)))

	results := make(map[string]*product.Product, len(ids))
	for i, id := range ids {
		p, err := s.CheckItem(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "check item", "id", id, "err", err)
			results[id] = nil
		} else {
			results[id] = p
		}

		if i < len(ids)-1 && !s.pause(ctx) {
			break
		}
	}

	s.mu.Lock()
	snapshot := make(map[string][]product.Observation, len(s.history))
	for id, observations := range s.history {
		snapshot[id] = observations
	}
	s.mu.Unlock()

	err := s.store.Save(ctx, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "persist history", "err", err)
	}
	return results
}

// pause sleeps a random duration within the configured bounds, returning
// false when ctx was cancelled instead.
func (s *Service) pause(ctx context.Context) bool {
	if s.options.MaxItemDelay <= 0 {
		return ctx.Err() == nil
	}

	delay := s.options.MinItemDelay
	if s.options.MaxItemDelay > delay {
		ms, err := random.IntRange(
			int(delay/time.Millisecond),
			int(s.options.MaxItemDelay/time.Millisecond)+1,
		)
		if err == nil {
			delay = time.Duration(ms) * time.Millisecond
		}
	}
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Statistics summarizes the item's observations over the trailing number of
// days. ok is false when the window holds nothing.
func (s *Service) Statistics(id string, days int) (stats Stats, ok bool) {
	cutoff := time.Now().AddDate(0, 0, -days)

	s.mu.Lock()
	var window []product.Observation
	for _, o := range s.history[id] {
		if o.Timestamp.Before(cutoff) {
			continue
		}
		window = append(window, o)
	}
	s.mu.Unlock()

	if len(window) == 0 {
		return Stats{}, false
	}
	return computeStats(id, days, window), true
}
