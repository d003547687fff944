package entity

import (
	"context"
	"fmt"
	"sync"

	"together-backend/internal/store"
)

// Known collection names. The registry is not closed over this set: asking
// for an unknown name materializes an accessor for it on first use.
const (
	Music               = "music"
	Playlists           = "playlists"
	ListeningSessions   = "listening_sessions"
	DailyCheckIns       = "daily_checkins"
	Notes               = "notes"
	RelationshipInsight = "relationship_insights"
	Events              = "events"
	Bookmarks           = "bookmarks"
	DateIdeas           = "date_ideas"
	SharedTasks         = "shared_tasks"
	LocationShares      = "location_shares"
	MemoryPins          = "memory_pins"
	Photos              = "photos"
	Videos              = "videos"
	RelationshipData    = "relationship_data"
	UserPresence        = "user_presence"
	Users               = "users"
	Pairs               = "pairs"
)

// KnownCollections lists the collections registered at startup.
var KnownCollections = []string{
	Music, Playlists, ListeningSessions, DailyCheckIns, Notes,
	RelationshipInsight, Events, Bookmarks, DateIdeas, SharedTasks,
	LocationShares, MemoryPins, Photos, Videos, RelationshipData,
	UserPresence, Users, Pairs,
}

// ChangeEvent describes a mutation applied to a collection.
type ChangeEvent struct {
	Collection string         `json:"collection"`
	Action     string         `json:"action"` // created | updated | deleted
	ID         string         `json:"id"`
	Document   store.Document `json:"document,omitempty"`
}

// Publisher receives change events after successful mutations.
type Publisher interface {
	Publish(ev ChangeEvent)
}

// Registry hands out one Accessor per collection name.
type Registry struct {
	store store.Store

	mu        sync.Mutex
	accessors map[string]*Accessor
	publisher Publisher
}

// NewRegistry creates a registry over the given store with the known
// collections pre-registered.
func NewRegistry(s store.Store) *Registry {
	r := &Registry{
		store:     s,
		accessors: make(map[string]*Accessor, len(KnownCollections)),
	}
	for _, name := range KnownCollections {
		r.accessors[name] = &Accessor{registry: r, collection: name}
	}
	return r
}

// SetPublisher installs the change-event sink. Pass nil to disable.
func (r *Registry) SetPublisher(p Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publisher = p
}

// Accessor returns the accessor for a collection, registering it lazily when
// the name was not known at startup.
func (r *Registry) Accessor(collection string) *Accessor {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accessors[collection]
	if !ok {
		a = &Accessor{registry: r, collection: collection}
		r.accessors[collection] = a
	}
	return a
}

// Store exposes the underlying document store.
func (r *Registry) Store() store.Store { return r.store }

func (r *Registry) publish(ev ChangeEvent) {
	r.mu.Lock()
	p := r.publisher
	r.mu.Unlock()
	if p != nil {
		p.Publish(ev)
	}
}

// Accessor is the uniform four-operation interface over one collection.
type Accessor struct {
	registry   *Registry
	collection string
}

// Collection returns the collection name the accessor is bound to.
func (a *Accessor) Collection() string { return a.collection }

// List returns documents sorted per orderStr ("-field" descending, "field"
// ascending, "" descending created_date), up to limit when limit > 0.
func (a *Accessor) List(ctx context.Context, orderStr string, limit int) ([]store.Document, error) {
	docs, err := a.registry.store.List(ctx, a.collection, ParseOrder(orderStr), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", a.collection, err)
	}
	return docs, nil
}

// Find returns documents matching the equality filter.
func (a *Accessor) Find(ctx context.Context, filter store.Filter, orderStr string, limit int) ([]store.Document, error) {
	docs, err := a.registry.store.Find(ctx, a.collection, filter, ParseOrder(orderStr), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", a.collection, err)
	}
	return docs, nil
}

// Get returns one document by id.
func (a *Accessor) Get(ctx context.Context, id string) (store.Document, error) {
	return a.registry.store.Get(ctx, a.collection, id)
}

// Create persists data and returns it with the assigned id and created_date.
func (a *Accessor) Create(ctx context.Context, data map[string]any) (store.Document, error) {
	doc, err := a.registry.store.Create(ctx, a.collection, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", a.collection, err)
	}
	a.registry.publish(ChangeEvent{
		Collection: a.collection, Action: "created", ID: doc.ID(), Document: doc,
	})
	return doc, nil
}

// Update applies a partial-field merge patch to an existing document.
func (a *Accessor) Update(ctx context.Context, id string, patch map[string]any) (store.Document, error) {
	doc, err := a.registry.store.Update(ctx, a.collection, id, patch)
	if err != nil {
		return nil, err
	}
	a.registry.publish(ChangeEvent{
		Collection: a.collection, Action: "updated", ID: id, Document: doc,
	})
	return doc, nil
}

// Delete removes a document. Deleting a missing id is not an error.
func (a *Accessor) Delete(ctx context.Context, id string) error {
	if err := a.registry.store.Delete(ctx, a.collection, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", a.collection, err)
	}
	a.registry.publish(ChangeEvent{
		Collection: a.collection, Action: "deleted", ID: id,
	})
	return nil
}

// Upsert updates the single document matching filter or creates it.
func (a *Accessor) Upsert(ctx context.Context, filter store.Filter, data map[string]any) (store.Document, error) {
	doc, err := a.registry.store.Upsert(ctx, a.collection, filter, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert %s: %w", a.collection, err)
	}
	a.registry.publish(ChangeEvent{
		Collection: a.collection, Action: "updated", ID: doc.ID(), Document: doc,
	})
	return doc, nil
}

// CreateExclusive creates data as the only document in the collection with
// flagField set, clearing the flag everywhere else atomically.
func (a *Accessor) CreateExclusive(ctx context.Context, flagField string, data map[string]any) (store.Document, error) {
	doc, err := a.registry.store.CreateExclusive(ctx, a.collection, flagField, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", a.collection, err)
	}
	a.registry.publish(ChangeEvent{
		Collection: a.collection, Action: "created", ID: doc.ID(), Document: doc,
	})
	return doc, nil
}
