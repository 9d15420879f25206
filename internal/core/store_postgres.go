package core

import (
	"context"
	"errors"
	"fmt"

	db "github.com/JonMunkholm/catalog/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes mapped to store sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Pool is the subset of *pgxpool.Pool the store needs.
type Pool interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// PostgresStore is the Store backed by the catalog tables.
type PostgresStore struct {
	pool Pool
}

// NewPostgresStore creates a store over pool.
func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Categories(ctx context.Context) ([]Category, error) {
	rows, err := db.New(s.pool).ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]Category, len(rows))
	for i, r := range rows {
		out[i] = Category{ID: r.ID, Name: r.Name}
	}
	return out, nil
}

func (s *PostgresStore) Products(ctx context.Context) ([]Product, error) {
	rows, err := db.New(s.pool).ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]Product, len(rows))
	for i, r := range rows {
		out[i] = Product{
			ID:           r.ID,
			SKU:          r.Sku,
			Name:         r.Name,
			Description:  r.Description,
			Price:        r.Price,
			HidePrice:    r.HidePrice,
			StockStatus:  StockStatus(r.StockStatus),
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			Features:     nonNil(r.Features),
			Images:       nonNil(r.Images),
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		}
	}
	return out, nil
}

// SaveProduct inserts or updates one product and replaces its features and
// images in a single transaction.
func (s *PostgresStore) SaveProduct(ctx context.Context, p ProductPayload) (Product, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Product{}, fmt.Errorf("save product %s: begin: %w", p.SKU, err)
	}

	saved, err := saveProductTx(ctx, db.New(s.pool).WithTx(tx), p)
	if err != nil {
		_ = tx.Rollback(ctx)
		return Product{}, fmt.Errorf("save product %s: %w", p.SKU, mapPgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return Product{}, fmt.Errorf("save product %s: commit: %w", p.SKU, err)
	}
	return saved, nil
}

func saveProductTx(ctx context.Context, q *db.Queries, p ProductPayload) (Product, error) {
	id := p.ID
	var row db.SaveProductRow
	var err error

	if id == "" {
		id = uuid.NewString()
		row, err = q.InsertProduct(ctx, db.InsertProductParams{
			ID:          id,
			Sku:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			HidePrice:   p.HidePrice,
			StockStatus: string(p.StockStatus),
			CategoryID:  p.CategoryID,
		})
		if err != nil {
			return Product{}, fmt.Errorf("insert: %w", err)
		}
	} else {
		row, err = q.UpdateProduct(ctx, db.UpdateProductParams{
			ID:          id,
			Sku:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			HidePrice:   p.HidePrice,
			StockStatus: string(p.StockStatus),
			CategoryID:  p.CategoryID,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		if err != nil {
			return Product{}, fmt.Errorf("update: %w", err)
		}
		if err := q.DeleteProductFeatures(ctx, id); err != nil {
			return Product{}, fmt.Errorf("clear features: %w", err)
		}
		if err := q.DeleteProductImages(ctx, id); err != nil {
			return Product{}, fmt.Errorf("clear images: %w", err)
		}
	}

	for i, text := range p.Features {
		if err := q.InsertProductFeature(ctx, db.InsertProductFeatureParams{
			ProductID: id,
			Position:  int32(i),
			Text:      text,
		}); err != nil {
			return Product{}, fmt.Errorf("insert feature %d: %w", i, err)
		}
	}
	for i, url := range p.Images {
		if err := q.InsertProductImage(ctx, db.InsertProductImageParams{
			ProductID: id,
			Position:  int32(i),
			Url:       url,
		}); err != nil {
			return Product{}, fmt.Errorf("insert image %d: %w", i, err)
		}
	}

	return Product{
		ID:           id,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		HidePrice:    p.HidePrice,
		StockStatus:  p.StockStatus,
		CategoryID:   p.CategoryID,
		CategoryName: row.CategoryName,
		Features:     nonNil(p.Features),
		Images:       nonNil(p.Images),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// mapPgError translates constraint violations into store sentinels.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return ErrDuplicateSKU
	case pgForeignKeyViolation:
		return ErrUnknownCategory
	}
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
