// Package memory provides in-memory implementations of the engine's
// repository contracts, suitable for demos and tests.
package memory

import (
	"context"
	"sync"

	"landedcost/internal/core/apperror"
	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/domain/itemmaster"
	"landedcost/internal/domain/receipts"
)

type sourceKey struct {
	kind     entity.SourceKind
	sourceID id.ID
}

// SourceStore is an in-memory receipt document store.
type SourceStore struct {
	mu   sync.RWMutex
	docs map[sourceKey]receipts.SourceDoc
}

// NewSourceStore creates the store.
func NewSourceStore() *SourceStore {
	return &SourceStore{docs: make(map[sourceKey]receipts.SourceDoc)}
}

// Put registers a source document.
func (s *SourceStore) Put(doc receipts.SourceDoc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[sourceKey{kind: doc.Kind, sourceID: doc.SourceID}] = doc
}

func (s *SourceStore) Load(_ context.Context, kind entity.SourceKind, sourceID id.ID) (*receipts.SourceDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[sourceKey{kind: kind, sourceID: sourceID}]
	if !ok {
		return nil, apperror.NewNotFound(string(kind), sourceID.String())
	}

	out := doc
	out.Lines = append([]receipts.SourceLine(nil), doc.Lines...)
	return &out, nil
}

var _ receipts.SourceStore = (*SourceStore)(nil)

// ItemRepository is an in-memory item master.
type ItemRepository struct {
	mu       sync.RWMutex
	profiles map[string]itemmaster.ItemProfile
}

// NewItemRepository creates the repository.
func NewItemRepository() *ItemRepository {
	return &ItemRepository{profiles: make(map[string]itemmaster.ItemProfile)}
}

// Put registers an item profile.
func (r *ItemRepository) Put(profile itemmaster.ItemProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.ItemCode] = profile
}

func (r *ItemRepository) GetProfile(_ context.Context, itemCode string) (itemmaster.ItemProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[itemCode]
	if !ok {
		return itemmaster.ItemProfile{}, apperror.NewNotFound("item", itemCode)
	}
	return profile, nil
}

var _ itemmaster.Repository = (*ItemRepository)(nil)
