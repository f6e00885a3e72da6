package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
)

// VersionRepository persists serialized catalog versions.
type VersionRepository interface {
	SaveVersion(ctx context.Context, payload []byte) (version int64, createdAt time.Time, err error)
	LoadVersion(ctx context.Context, version int64) (payload []byte, createdAt time.Time, err error)
	LatestVersion(ctx context.Context) (version int64, payload []byte, createdAt time.Time, err error)
}

// Store serves immutable catalog snapshots by version. Published snapshots
// are cached forever; they never change, so readers take no locks beyond
// the cache lookup and admin writes never block in-flight order reads.
type Store struct {
	mu     sync.RWMutex
	repo   VersionRepository
	cache  map[int64]*Snapshot
	latest *Snapshot
}

// NewStore creates a snapshot store over the given repository.
func NewStore(repo VersionRepository) *Store {
	return &Store{
		repo:  repo,
		cache: make(map[int64]*Snapshot),
	}
}

// Warm loads the latest published version into the cache. A catalog with
// no versions yet (nil payload) yields an empty snapshot of version zero.
func (s *Store) Warm(ctx context.Context) error {
	version, payload, createdAt, err := s.repo.LatestVersion(ctx)
	if err != nil {
		return err
	}
	if payload == nil {
		s.mu.Lock()
		s.latest = NewSnapshot(0, time.Time{}, nil)
		s.mu.Unlock()
		return nil
	}

	snap, err := UnmarshalSnapshot(version, createdAt, payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[version] = snap
	s.latest = snap
	s.mu.Unlock()
	return nil
}

// Latest returns the most recently published snapshot.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}
	if err := s.Warm(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, nil
}

// Version returns the snapshot with the given version id, loading it from
// the repository on first access.
func (s *Store) Version(ctx context.Context, version int64) (*Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.cache[version]
	s.mu.RUnlock()
	if ok {
		return snap, nil
	}

	payload, createdAt, err := s.repo.LoadVersion(ctx, version)
	if err != nil {
		return nil, err
	}
	snap, err = UnmarshalSnapshot(version, createdAt, payload)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[version] = snap
	s.mu.Unlock()
	return snap, nil
}

// Publish validates the candidate configuration and persists it as a new
// immutable version. On any validation failure nothing is written and the
// previously published snapshot stays current.
func (s *Store) Publish(ctx context.Context, categories []models.Category) (*Snapshot, error) {
	if err := Validate(categories); err != nil {
		return nil, err
	}

	candidate := NewSnapshot(0, time.Time{}, categories)
	payload, err := candidate.Marshal()
	if err != nil {
		return nil, err
	}

	version, createdAt, err := s.repo.SaveVersion(ctx, payload)
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot(version, createdAt, categories)
	s.mu.Lock()
	s.cache[version] = snap
	s.latest = snap
	s.mu.Unlock()
	return snap, nil
}
