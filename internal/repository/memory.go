package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avoronin/linkcut/internal/models"
)

// MemoryRepository is an in-process implementation of the link and tag
// stores. It backs the service when no database DSN is configured and is
// the storage used by the unit tests. Same semantics as the PostgreSQL
// implementation, including live-shortcode uniqueness and owner scoping.
type MemoryRepository struct {
	mu    sync.RWMutex
	links map[uuid.UUID]models.Link
	tags  map[uuid.UUID]models.Tag
	edges map[uuid.UUID]map[uuid.UUID]bool
	seq   map[uuid.UUID]int
	next  int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		links: make(map[uuid.UUID]models.Link),
		tags:  make(map[uuid.UUID]models.Tag),
		edges: make(map[uuid.UUID]map[uuid.UUID]bool),
		seq:   make(map[uuid.UUID]int),
	}
}

func (m *MemoryRepository) CreateLink(_ context.Context, link models.Link) (models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.links {
		if existing.DeletedAt == nil && existing.Shortcode == link.Shortcode {
			return models.Link{}, ErrCodeTaken
		}
	}

	now := time.Now()
	link.CreatedAt = now
	link.UpdatedAt = now
	link.TagIDs = []uuid.UUID{}

	m.links[link.ID] = link
	m.next++
	m.seq[link.ID] = m.next

	return link, nil
}

func (m *MemoryRepository) GetLink(_ context.Context, ownerID string, id uuid.UUID) (models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[id]
	if !ok || link.DeletedAt != nil || link.OwnerID != ownerID {
		return models.Link{}, ErrNotFound
	}

	link.TagIDs = m.tagIDsLocked(id)
	return link, nil
}

func (m *MemoryRepository) ResolveCode(_ context.Context, code string, now time.Time) (models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, link := range m.links {
		if link.Shortcode == code && link.Resolvable(now) {
			return link, nil
		}
	}

	return models.Link{}, ErrNotFound
}

func (m *MemoryRepository) UpdateLink(_ context.Context, ownerID string, id uuid.UUID, upd models.UpdateLinkRequest) (models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok || link.DeletedAt != nil || link.OwnerID != ownerID {
		return models.Link{}, ErrNotFound
	}

	if upd.Shortcode != nil && *upd.Shortcode != link.Shortcode {
		for _, existing := range m.links {
			if existing.ID != id && existing.DeletedAt == nil && existing.Shortcode == *upd.Shortcode {
				return models.Link{}, ErrCodeTaken
			}
		}
		link.Shortcode = *upd.Shortcode
	}
	if upd.IsActive != nil {
		link.IsActive = *upd.IsActive
	}
	if upd.ExpiresAt != nil {
		expiresAt := *upd.ExpiresAt
		link.ExpiresAt = &expiresAt
	}

	link.UpdatedAt = time.Now()
	m.links[id] = link

	link.TagIDs = m.tagIDsLocked(id)
	return link, nil
}

func (m *MemoryRepository) SoftDeleteLink(_ context.Context, ownerID string, id uuid.UUID) (models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok || link.DeletedAt != nil || link.OwnerID != ownerID {
		return models.Link{}, ErrNotFound
	}

	now := time.Now()
	link.DeletedAt = &now
	link.UpdatedAt = now
	m.links[id] = link

	delete(m.edges, id)

	link.TagIDs = []uuid.UUID{}
	return link, nil
}

func (m *MemoryRepository) ListLinks(_ context.Context, ownerID string, filter models.LinkFilter, now time.Time) ([]models.Link, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]models.Link, 0)
	for _, link := range m.links {
		if link.OwnerID != ownerID || link.DeletedAt != nil {
			continue
		}
		if !m.matchesStatus(link, filter.Status, now) {
			continue
		}
		if len(filter.TagIDs) > 0 && !m.hasAnyTagLocked(link.ID, filter.TagIDs) {
			continue
		}
		link.TagIDs = m.tagIDsLocked(link.ID)
		matched = append(matched, link)
	}

	sort.Slice(matched, func(i, j int) bool {
		return m.seq[matched[i].ID] > m.seq[matched[j].ID]
	})

	total := int64(len(matched))

	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

func (m *MemoryRepository) matchesStatus(link models.Link, status models.LinkStatus, now time.Time) bool {
	switch status {
	case models.StatusActive:
		return link.IsActive && !link.Expired(now)
	case models.StatusInactive:
		return !link.IsActive || link.Expired(now)
	}
	return true
}

func (m *MemoryRepository) CreateTag(_ context.Context, tag models.Tag) (models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.tags {
		if existing.OwnerID == tag.OwnerID && existing.Name == tag.Name {
			return models.Tag{}, ErrTagNameTaken
		}
	}

	now := time.Now()
	tag.CreatedAt = now
	tag.UpdatedAt = now
	m.tags[tag.ID] = tag

	return tag, nil
}

func (m *MemoryRepository) RenameTag(_ context.Context, ownerID string, id uuid.UUID, name string) (models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tag, ok := m.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return models.Tag{}, ErrNotFound
	}

	for _, existing := range m.tags {
		if existing.ID != id && existing.OwnerID == ownerID && existing.Name == name {
			return models.Tag{}, ErrTagNameTaken
		}
	}

	tag.Name = name
	tag.UpdatedAt = time.Now()
	m.tags[id] = tag

	return tag, nil
}

func (m *MemoryRepository) DeleteTag(_ context.Context, ownerID string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tag, ok := m.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return ErrNotFound
	}

	delete(m.tags, id)
	for linkID := range m.edges {
		delete(m.edges[linkID], id)
	}

	return nil
}

func (m *MemoryRepository) ListTags(_ context.Context, ownerID string) ([]models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tags := make([]models.Tag, 0)
	for _, tag := range m.tags {
		if tag.OwnerID == ownerID {
			tags = append(tags, tag)
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		return strings.Compare(tags[i].Name, tags[j].Name) < 0
	})

	return tags, nil
}

func (m *MemoryRepository) AttachTags(_ context.Context, ownerID string, linkID uuid.UUID, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[linkID]
	if !ok || link.DeletedAt != nil || link.OwnerID != ownerID {
		return nil
	}

	for _, tagID := range tagIDs {
		tag, ok := m.tags[tagID]
		if !ok || tag.OwnerID != ownerID {
			continue
		}
		if m.edges[linkID] == nil {
			m.edges[linkID] = make(map[uuid.UUID]bool)
		}
		m.edges[linkID][tagID] = true
	}

	return nil
}

func (m *MemoryRepository) DetachTags(_ context.Context, ownerID string, linkID uuid.UUID, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[linkID]
	if !ok || link.OwnerID != ownerID {
		return nil
	}

	for _, tagID := range tagIDs {
		delete(m.edges[linkID], tagID)
	}

	return nil
}

func (m *MemoryRepository) GetLinkTagIDs(_ context.Context, linkID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.tagIDsLocked(linkID), nil
}

func (m *MemoryRepository) tagIDsLocked(linkID uuid.UUID) []uuid.UUID {
	tagIDs := make([]uuid.UUID, 0, len(m.edges[linkID]))
	for tagID := range m.edges[linkID] {
		tagIDs = append(tagIDs, tagID)
	}
	sort.Slice(tagIDs, func(i, j int) bool {
		return tagIDs[i].String() < tagIDs[j].String()
	})
	return tagIDs
}

func (m *MemoryRepository) hasAnyTagLocked(linkID uuid.UUID, tagIDs []uuid.UUID) bool {
	for _, tagID := range tagIDs {
		if m.edges[linkID][tagID] {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) Ping(context.Context) error { return nil }

func (m *MemoryRepository) Close() error { return nil }
