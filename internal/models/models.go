package models

import (
	"time"

	"github.com/google/uuid"
)

// Link is a shortcode to destination mapping owned by a single user.
// A non-nil DeletedAt marks a tombstone: the row stays but the shortcode
// slot is released for reuse by a new link.
type Link struct {
	ID          uuid.UUID   `json:"id"`
	Shortcode   string      `json:"shortcode"`
	OriginalURL string      `json:"originalUrl"`
	OwnerID     string      `json:"-"`
	IsActive    bool        `json:"isActive"`
	ExpiresAt   *time.Time  `json:"expiresAt,omitempty"`
	Clicks      int64       `json:"clicks"`
	DeletedAt   *time.Time  `json:"deletedAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	TagIDs      []uuid.UUID `json:"tagIds"`
}

// Resolvable reports whether a redirect to this link should succeed at the
// given instant: not deleted, active, and not past expiry.
func (l Link) Resolvable(now time.Time) bool {
	if l.DeletedAt != nil || !l.IsActive {
		return false
	}
	return !l.Expired(now)
}

// Expired reports whether the link has an expiry at or before now.
func (l Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Tag is an owner-scoped label. (OwnerID, Name) is unique.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateLinkRequest struct {
	URL       string     `json:"url"`
	Shortcode string     `json:"shortcode,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// UpdateLinkRequest carries a partial update. Nil fields are left unchanged.
type UpdateLinkRequest struct {
	Shortcode *string    `json:"shortcode,omitempty"`
	IsActive  *bool      `json:"isActive,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (r UpdateLinkRequest) Empty() bool {
	return r.Shortcode == nil && r.IsActive == nil && r.ExpiresAt == nil
}

type CreateTagRequest struct {
	Name string `json:"name"`
}

type RenameTagRequest struct {
	Name string `json:"name"`
}

type TagIDsRequest struct {
	TagIDs []uuid.UUID `json:"tagIds"`
}

// LinkStatus selects a status class when listing links. Inactive covers
// both manually deactivated and expired links.
type LinkStatus string

const (
	StatusAll      LinkStatus = "all"
	StatusActive   LinkStatus = "active"
	StatusInactive LinkStatus = "inactive"
)

func (s LinkStatus) Valid() bool {
	switch s {
	case StatusAll, StatusActive, StatusInactive:
		return true
	}
	return false
}

// LinkFilter narrows and pages an owner-scoped listing. TagIDs means
// "has at least one of these tags".
type LinkFilter struct {
	Status LinkStatus
	TagIDs []uuid.UUID
	Page   int
	Limit  int
}

func (f LinkFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ClickEvent is published to the analytics queue on every successful
// redirect. The counting subsystem consuming it lives outside this service.
type ClickEvent struct {
	Shortcode string    `json:"short_code"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"user_agent"`
	Referer   string    `json:"referer,omitempty"`
}
