package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/content-service/internal/domain"
)

// PostFilter selects posts by visibility.
type PostFilter struct {
	Published bool
}

// PostUpdate lists the fields to change; nil fields are left untouched.
// PublishedAt is only applied when the stored value is still null.
type PostUpdate struct {
	Title       *string
	Content     *string
	Status      *domain.PostStatus
	PublishedAt *time.Time
	Asset       *domain.AssetRef
}

// Empty reports whether the update changes nothing.
func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Status == nil && u.PublishedAt == nil && u.Asset == nil
}

// PostRepository encapsulates post persistence.
type PostRepository interface {
	Count(ctx context.Context, filter PostFilter) (int, error)
	// FindPage returns posts ordered by creation time, newest first.
	FindPage(ctx context.Context, filter PostFilter, skip, limit int) ([]domain.Post, error)
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	Create(ctx context.Context, post *domain.Post) error
	Update(ctx context.Context, id string, update PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository instantiates repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

const postColumns = `id, title, content, author_id, status, published_at, image_public_id, image_url, created_at, updated_at`

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int, error) {
	where, args := filterClause(filter)
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *postRepository) FindPage(ctx context.Context, filter PostFilter, skip, limit int) ([]domain.Post, error) {
	where, args := filterClause(filter)
	if limit <= 0 {
		limit = 10
	}
	if skip < 0 {
		skip = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		postColumns, where, limit, skip)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *post)
	}
	return result, rows.Err()
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id=$1`
	return scanPost(r.pool.QueryRow(ctx, query, id))
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO posts (title, content, author_id, status, published_at, image_public_id, image_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	publicID, url := assetColumns(post.Asset)
	return r.pool.QueryRow(ctx, query,
		post.Title,
		post.Content,
		post.AuthorID,
		post.Status,
		post.PublishedAt,
		publicID,
		url,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

func (r *postRepository) Update(ctx context.Context, id string, update PostUpdate) (*domain.Post, error) {
	query, args := buildPostUpdate(id, update)
	return scanPost(r.pool.QueryRow(ctx, query, args...))
}

// buildPostUpdate renders the UPDATE statement for the non-nil fields of update.
// The post id is always the last argument.
func buildPostUpdate(id string, update PostUpdate) (string, []any) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if update.Title != nil {
		args = append(args, *update.Title)
		sets = append(sets, fmt.Sprintf("title=$%d", len(args)))
	}
	if update.Content != nil {
		args = append(args, *update.Content)
		sets = append(sets, fmt.Sprintf("content=$%d", len(args)))
	}
	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if update.PublishedAt != nil {
		args = append(args, *update.PublishedAt)
		sets = append(sets, fmt.Sprintf("published_at=COALESCE(published_at, $%d)", len(args)))
	}
	if update.Asset != nil {
		args = append(args, update.Asset.ExternalID, update.Asset.URL)
		sets = append(sets, fmt.Sprintf("image_public_id=$%d, image_url=$%d", len(args)-1, len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), postColumns)
	return query, args
}

func (r *postRepository) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func filterClause(filter PostFilter) (string, []any) {
	if filter.Published {
		return "status=$1", []any{domain.PostStatusPublished}
	}
	return "status<>$1", []any{domain.PostStatusPublished}
}

func assetColumns(asset *domain.AssetRef) (*string, *string) {
	if asset == nil {
		return nil, nil
	}
	return &asset.ExternalID, &asset.URL
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var (
		post     domain.Post
		publicID *string
		url      *string
	)
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.Status,
		&post.PublishedAt,
		&publicID,
		&url,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if publicID != nil && url != nil {
		post.Asset = &domain.AssetRef{ExternalID: *publicID, URL: *url}
	}
	return &post, nil
}
