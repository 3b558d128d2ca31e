package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avoronin/linkcut/internal/models"
)

var linkColumns = []string{
	"id", "shortcode", "original_url", "owner_id", "is_active",
	"expires_at", "clicks", "deleted_at", "created_at", "updated_at",
}

func scanLink(row pgx.Row) (models.Link, error) {
	var link models.Link
	err := row.Scan(
		&link.ID, &link.Shortcode, &link.OriginalURL, &link.OwnerID,
		&link.IsActive, &link.ExpiresAt, &link.Clicks, &link.DeletedAt,
		&link.CreatedAt, &link.UpdatedAt,
	)
	return link, err
}

// CreateLink inserts a new link. Uniqueness of the shortcode among live
// links is enforced by a partial unique index, so the insert itself is the
// collision check: a unique violation means the code is taken.
func (p *PostgresRepository) CreateLink(ctx context.Context, link models.Link) (models.Link, error) {
	query, args, err := p.sb.
		Insert("links").
		Columns("id", "shortcode", "original_url", "owner_id", "is_active", "expires_at").
		Values(link.ID, link.Shortcode, link.OriginalURL, link.OwnerID, link.IsActive, link.ExpiresAt).
		Suffix("RETURNING " + joinColumns(linkColumns)).
		ToSql()
	if err != nil {
		return models.Link{}, fmt.Errorf("build query: %w", err)
	}

	created, err := scanLink(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.Link{}, ErrCodeTaken
		}
		return models.Link{}, fmt.Errorf("insert link: %w", err)
	}

	return created, nil
}

// GetLink fetches a non-deleted link by id, scoped to its owner. A link
// owned by someone else is indistinguishable from a missing one.
func (p *PostgresRepository) GetLink(ctx context.Context, ownerID string, id uuid.UUID) (models.Link, error) {
	query, args, err := p.sb.
		Select(linkColumns...).
		From("links").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return models.Link{}, fmt.Errorf("build query: %w", err)
	}

	link, err := scanLink(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Link{}, ErrNotFound
		}
		return models.Link{}, fmt.Errorf("query link: %w", err)
	}

	link.TagIDs, err = p.GetLinkTagIDs(ctx, link.ID)
	if err != nil {
		return models.Link{}, err
	}

	return link, nil
}

// ResolveCode fetches the link behind a shortcode only if it currently
// resolves: live, active, and not expired. Every other state is ErrNotFound,
// so the caller cannot tell a deactivated code from a missing one.
func (p *PostgresRepository) ResolveCode(ctx context.Context, code string, now time.Time) (models.Link, error) {
	query, args, err := p.sb.
		Select(linkColumns...).
		From("links").
		Where(squirrel.Eq{"shortcode": code, "deleted_at": nil, "is_active": true}).
		Where(squirrel.Or{
			squirrel.Eq{"expires_at": nil},
			squirrel.Gt{"expires_at": now},
		}).
		ToSql()
	if err != nil {
		return models.Link{}, fmt.Errorf("build query: %w", err)
	}

	link, err := scanLink(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Link{}, ErrNotFound
		}
		return models.Link{}, fmt.Errorf("resolve shortcode: %w", err)
	}

	return link, nil
}

// UpdateLink applies a partial update to a non-deleted, owner-scoped link.
func (p *PostgresRepository) UpdateLink(ctx context.Context, ownerID string, id uuid.UUID, upd models.UpdateLinkRequest) (models.Link, error) {
	builder := p.sb.
		Update("links").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID, "deleted_at": nil}).
		Suffix("RETURNING " + joinColumns(linkColumns))

	if upd.Shortcode != nil {
		builder = builder.Set("shortcode", *upd.Shortcode)
	}
	if upd.IsActive != nil {
		builder = builder.Set("is_active", *upd.IsActive)
	}
	if upd.ExpiresAt != nil {
		builder = builder.Set("expires_at", *upd.ExpiresAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return models.Link{}, fmt.Errorf("build query: %w", err)
	}

	link, err := scanLink(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Link{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.Link{}, ErrCodeTaken
		}
		return models.Link{}, fmt.Errorf("update link: %w", err)
	}

	link.TagIDs, err = p.GetLinkTagIDs(ctx, link.ID)
	if err != nil {
		return models.Link{}, err
	}

	return link, nil
}

// SoftDeleteLink tombstones a link and detaches its tag edges in one
// transaction. Deleting an already-deleted link is ErrNotFound.
func (p *PostgresRepository) SoftDeleteLink(ctx context.Context, ownerID string, id uuid.UUID) (models.Link, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return models.Link{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := p.sb.
		Update("links").
		Set("deleted_at", squirrel.Expr("now()")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID, "deleted_at": nil}).
		Suffix("RETURNING " + joinColumns(linkColumns)).
		ToSql()
	if err != nil {
		return models.Link{}, fmt.Errorf("build query: %w", err)
	}

	link, err := scanLink(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Link{}, ErrNotFound
		}
		return models.Link{}, fmt.Errorf("soft delete link: %w", err)
	}

	detach, args, err := p.sb.
		Delete("link_tags").
		Where(squirrel.Eq{"link_id": id}).
		ToSql()
	if err != nil {
		return models.Link{}, fmt.Errorf("build query: %w", err)
	}

	if _, err := tx.Exec(ctx, detach, args...); err != nil {
		return models.Link{}, fmt.Errorf("detach tag edges: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Link{}, fmt.Errorf("commit transaction: %w", err)
	}

	return link, nil
}

// ListLinks returns one page of an owner's links plus the total count for
// the same predicate. Newest first, id as tie-break.
func (p *PostgresRepository) ListLinks(ctx context.Context, ownerID string, filter models.LinkFilter, now time.Time) ([]models.Link, int64, error) {
	predicate := p.listPredicate(ownerID, filter, now)

	countQuery, countArgs, err := p.sb.
		Select("COUNT(*)").
		From("links").
		Where(predicate).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := p.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count links: %w", err)
	}

	query, args, err := p.sb.
		Select(linkColumns...).
		From("links").
		Where(predicate).
		OrderBy("created_at DESC", "id DESC").
		Offset(uint64(filter.Offset())).
		Limit(uint64(filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	links := make([]models.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	if err := p.loadTagIDs(ctx, links); err != nil {
		return nil, 0, err
	}

	return links, total, nil
}

func (p *PostgresRepository) listPredicate(ownerID string, filter models.LinkFilter, now time.Time) squirrel.And {
	predicate := squirrel.And{
		squirrel.Eq{"owner_id": ownerID, "deleted_at": nil},
	}

	switch filter.Status {
	case models.StatusActive:
		predicate = append(predicate,
			squirrel.Eq{"is_active": true},
			squirrel.Or{
				squirrel.Eq{"expires_at": nil},
				squirrel.Gt{"expires_at": now},
			},
		)
	case models.StatusInactive:
		predicate = append(predicate, squirrel.Or{
			squirrel.Eq{"is_active": false},
			squirrel.LtOrEq{"expires_at": now},
		})
	}

	if len(filter.TagIDs) > 0 {
		predicate = append(predicate, squirrel.Expr(
			"EXISTS (SELECT 1 FROM link_tags lt WHERE lt.link_id = links.id AND lt.tag_id = ANY(?))",
			filter.TagIDs,
		))
	}

	return predicate
}

func (p *PostgresRepository) loadTagIDs(ctx context.Context, links []models.Link) error {
	if len(links) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(links))
	for i, link := range links {
		ids[i] = link.ID
	}

	query, args, err := p.sb.
		Select("link_id", "tag_id").
		From("link_tags").
		Where(squirrel.Eq{"link_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query tag edges: %w", err)
	}
	defer rows.Close()

	byLink := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var linkID, tagID uuid.UUID
		if err := rows.Scan(&linkID, &tagID); err != nil {
			return fmt.Errorf("scan tag edge: %w", err)
		}
		byLink[linkID] = append(byLink[linkID], tagID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	for i := range links {
		if tagIDs, ok := byLink[links[i].ID]; ok {
			links[i].TagIDs = tagIDs
		} else {
			links[i].TagIDs = []uuid.UUID{}
		}
	}

	return nil
}

func joinColumns(columns []string) string {
	out := columns[0]
	for _, c := range columns[1:] {
		out += ", " + c
	}
	return out
}
