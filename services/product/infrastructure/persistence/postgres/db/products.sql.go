package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, name, slug, tagline, description, web_url, web_image, tags,
    vote_count, status, submitted_by, user_id, organization_id, created_at, updated_at, approved_at`

// typeMap scans Postgres arrays through database/sql.
var typeMap = pgtype.NewMap()

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.Tagline,
		&i.Description,
		&i.WebUrl,
		&i.WebImage,
		typeMap.SQLScanner(&i.Tags),
		&i.VoteCount,
		&i.Status,
		&i.SubmittedBy,
		&i.UserID,
		&i.OrganizationID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ApprovedAt,
	)
	return i, err
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()
	var items []Product
	for rows.Next() {
		i, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertProduct = `-- name: InsertProduct :exec
INSERT INTO products (
    id, name, slug, tagline, description, web_url, web_image, tags,
    vote_count, status, submitted_by, user_id, organization_id, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

type InsertProductParams struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Tagline        string
	Description    string
	WebUrl         string
	WebImage       string
	Tags           []string
	VoteCount      int32
	Status         string
	SubmittedBy    string
	UserID         string
	OrganizationID sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) error {
	_, err := q.db.ExecContext(ctx, insertProduct,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.Tagline,
		arg.Description,
		arg.WebUrl,
		arg.WebImage,
		arg.Tags,
		arg.VoteCount,
		arg.Status,
		arg.SubmittedBy,
		arg.UserID,
		arg.OrganizationID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getProductByID = `-- name: GetProductByID :one
SELECT ` + productColumns + ` FROM products WHERE id = $1
`

func (q *Queries) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx, getProductByID, id))
}

const getProductBySlug = `-- name: GetProductBySlug :one
SELECT ` + productColumns + ` FROM products WHERE slug = $1 LIMIT 1
`

func (q *Queries) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx, getProductBySlug, slug))
}

type ListApprovedParams struct {
	Limit  int32
	Offset int32
}

const listApprovedNewest = `-- name: ListApprovedNewest :many
SELECT ` + productColumns + ` FROM products
WHERE status = 'approved'
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2
`

func (q *Queries) ListApprovedNewest(ctx context.Context, arg ListApprovedParams) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listApprovedNewest, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

const listApprovedTopVoted = `-- name: ListApprovedTopVoted :many
SELECT ` + productColumns + ` FROM products
WHERE status = 'approved'
ORDER BY vote_count DESC, created_at DESC, id DESC
LIMIT $1 OFFSET $2
`

func (q *Queries) ListApprovedTopVoted(ctx context.Context, arg ListApprovedParams) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listApprovedTopVoted, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

const listAdminProducts = `-- name: ListAdminProducts :many
SELECT ` + productColumns + ` FROM products
WHERE ($1::text IS NULL OR status = $1::text)
  AND ($2::text IS NULL
       OR name ILIKE '%' || $2::text || '%'
       OR tagline ILIKE '%' || $2::text || '%'
       OR description ILIKE '%' || $2::text || '%')
  AND ($3::text[] IS NULL OR cardinality($3::text[]) = 0 OR tags && $3::text[])
ORDER BY created_at DESC, id DESC
LIMIT $4 OFFSET $5
`

// ListAdminProductsParams leaves a predicate out when its field is null (or,
// for Tags, empty). Search is matched as an ILIKE pattern and must already be escaped.
type ListAdminProductsParams struct {
	Status sql.NullString
	Search sql.NullString
	Tags   []string
	Limit  int32
	Offset int32
}

func (q *Queries) ListAdminProducts(ctx context.Context, arg ListAdminProductsParams) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listAdminProducts,
		arg.Status,
		arg.Search,
		arg.Tags,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

const countProductsByStatus = `-- name: CountProductsByStatus :many
SELECT status, count(*) AS count FROM products GROUP BY status
`

type CountProductsByStatusRow struct {
	Status string
	Count  int64
}

func (q *Queries) CountProductsByStatus(ctx context.Context) ([]CountProductsByStatusRow, error) {
	rows, err := q.db.QueryContext(ctx, countProductsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountProductsByStatusRow
	for rows.Next() {
		var i CountProductsByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countPendingProducts = `-- name: CountPendingProducts :one
SELECT count(*) FROM products WHERE status = 'pending'
`

func (q *Queries) CountPendingProducts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPendingProducts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listDistinctTags = `-- name: ListDistinctTags :many
SELECT DISTINCT tag::text FROM products, unnest(tags) AS tag ORDER BY tag COLLATE "C"
`

func (q *Queries) ListDistinctTags(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listDistinctTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		items = append(items, tag)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const adjustProductVotes = `-- name: AdjustProductVotes :one
UPDATE products
SET vote_count = GREATEST(0, vote_count + $2::int)
WHERE id = $1
RETURNING id, slug, vote_count
`

type AdjustProductVotesParams struct {
	ID    uuid.UUID
	Delta int32
}

type AdjustProductVotesRow struct {
	ID        uuid.UUID
	Slug      string
	VoteCount int32
}

func (q *Queries) AdjustProductVotes(ctx context.Context, arg AdjustProductVotesParams) (AdjustProductVotesRow, error) {
	row := q.db.QueryRowContext(ctx, adjustProductVotes, arg.ID, arg.Delta)
	var i AdjustProductVotesRow
	err := row.Scan(&i.ID, &i.Slug, &i.VoteCount)
	return i, err
}

const updateProductStatus = `-- name: UpdateProductStatus :one
UPDATE products
SET status      = $2::text,
    updated_at  = $3::timestamptz,
    approved_at = CASE WHEN $2::text = 'approved' THEN $3::timestamptz ELSE approved_at END
WHERE id = $1
RETURNING ` + productColumns + `
`

type UpdateProductStatusParams struct {
	ID        uuid.UUID
	Status    string
	UpdatedAt time.Time
}

func (q *Queries) UpdateProductStatus(ctx context.Context, arg UpdateProductStatusParams) (Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx, updateProductStatus, arg.ID, arg.Status, arg.UpdatedAt))
}

const deleteProduct = `-- name: DeleteProduct :one
DELETE FROM products WHERE id = $1 RETURNING ` + productColumns + `
`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx, deleteProduct, id))
}
