package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avoronin/linkcut/internal/models"
)

var tagColumns = []string{"id", "name", "owner_id", "created_at", "updated_at"}

func scanTag(row pgx.Row) (models.Tag, error) {
	var tag models.Tag
	err := row.Scan(&tag.ID, &tag.Name, &tag.OwnerID, &tag.CreatedAt, &tag.UpdatedAt)
	return tag, err
}

func (p *PostgresRepository) CreateTag(ctx context.Context, tag models.Tag) (models.Tag, error) {
	query, args, err := p.sb.
		Insert("tags").
		Columns("id", "name", "owner_id").
		Values(tag.ID, tag.Name, tag.OwnerID).
		Suffix("RETURNING " + joinColumns(tagColumns)).
		ToSql()
	if err != nil {
		return models.Tag{}, fmt.Errorf("build query: %w", err)
	}

	created, err := scanTag(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.Tag{}, ErrTagNameTaken
		}
		return models.Tag{}, fmt.Errorf("insert tag: %w", err)
	}

	return created, nil
}

func (p *PostgresRepository) RenameTag(ctx context.Context, ownerID string, id uuid.UUID, name string) (models.Tag, error) {
	query, args, err := p.sb.
		Update("tags").
		Set("name", name).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		Suffix("RETURNING " + joinColumns(tagColumns)).
		ToSql()
	if err != nil {
		return models.Tag{}, fmt.Errorf("build query: %w", err)
	}

	tag, err := scanTag(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tag{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.Tag{}, ErrTagNameTaken
		}
		return models.Tag{}, fmt.Errorf("rename tag: %w", err)
	}

	return tag, nil
}

// DeleteTag removes a tag; its link_tags edges go with it via ON DELETE CASCADE.
func (p *PostgresRepository) DeleteTag(ctx context.Context, ownerID string, id uuid.UUID) error {
	query, args, err := p.sb.
		Delete("tags").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	cmdTag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *PostgresRepository) ListTags(ctx context.Context, ownerID string) ([]models.Tag, error) {
	query, args, err := p.sb.
		Select(tagColumns...).
		From("tags").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tags, nil
}

// AttachTags inserts edges for the given tag ids. The join re-checks inside
// the statement that both the link and every tag belong to ownerID, so a
// stale pre-check cannot create a cross-owner edge. Tags that are not owned
// or already attached are skipped silently.
func (p *PostgresRepository) AttachTags(ctx context.Context, ownerID string, linkID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	const query = `
		INSERT INTO link_tags (link_id, tag_id)
		SELECT l.id, t.id
		FROM links l
		JOIN tags t ON t.owner_id = l.owner_id
		WHERE l.id = $1 AND l.owner_id = $2 AND l.deleted_at IS NULL
		  AND t.id = ANY($3)
		ON CONFLICT DO NOTHING`

	if _, err := p.pool.Exec(ctx, query, linkID, ownerID, tagIDs); err != nil {
		return fmt.Errorf("attach tags: %w", err)
	}

	return nil
}

// DetachTags removes matching edges. Ownership of the link is verified by
// the same statement; detaching an absent edge is a no-op.
func (p *PostgresRepository) DetachTags(ctx context.Context, ownerID string, linkID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	const query = `
		DELETE FROM link_tags lt
		USING links l
		WHERE lt.link_id = l.id
		  AND l.id = $1 AND l.owner_id = $2
		  AND lt.tag_id = ANY($3)`

	if _, err := p.pool.Exec(ctx, query, linkID, ownerID, tagIDs); err != nil {
		return fmt.Errorf("detach tags: %w", err)
	}

	return nil
}

func (p *PostgresRepository) GetLinkTagIDs(ctx context.Context, linkID uuid.UUID) ([]uuid.UUID, error) {
	query, args, err := p.sb.
		Select("tag_id").
		From("link_tags").
		Where(squirrel.Eq{"link_id": linkID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tag edges: %w", err)
	}
	defer rows.Close()

	tagIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tag edge: %w", err)
		}
		tagIDs = append(tagIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tagIDs, nil
}
