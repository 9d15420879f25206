package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrProductNotFound is returned when an update targets a missing product.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateSKU is returned when a write would store a second product with the same SKU.
	ErrDuplicateSKU = errors.New("sku already exists")

	// ErrUnknownCategory is returned when a write references a missing category.
	ErrUnknownCategory = errors.New("category not found")
)

// LoadSnapshot reads categories and products for one validate or commit run.
func LoadSnapshot(ctx context.Context, r CatalogReader) (Snapshot, error) {
	categories, err := r.Categories(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load categories: %w", err)
	}
	products, err := r.Products(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load products: %w", err)
	}
	return Snapshot{Categories: categories, Products: products}, nil
}

// MemoryStore is an in-process Store. It backs tests and offline dry runs.
type MemoryStore struct {
	mu         sync.RWMutex
	categories []Category
	products   []Product
	now        func() time.Time
}

// NewMemoryStore creates a store seeded with categories.
func NewMemoryStore(categories ...Category) *MemoryStore {
	return &MemoryStore{
		categories: slices.Clone(categories),
		now:        time.Now,
	}
}

// AddCategory adds a category with a generated ID.
func (m *MemoryStore) AddCategory(name string) Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := Category{ID: uuid.NewString(), Name: name}
	m.categories = append(m.categories, c)
	return c
}

// RemoveCategory deletes the category with the given name (case-insensitive).
func (m *MemoryStore) RemoveCategory(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = slices.DeleteFunc(m.categories, func(c Category) bool {
		return strings.EqualFold(c.Name, name)
	})
}

func (m *MemoryStore) Categories(ctx context.Context) ([]Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

func (m *MemoryStore) Products(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Product, len(m.products))
	for i, p := range m.products {
		out[i] = cloneProduct(p)
	}
	return out, nil
}

// SaveProduct creates the product when p.ID is empty and replaces it otherwise.
// Features and images are replaced wholesale on update.
func (m *MemoryStore) SaveProduct(ctx context.Context, p ProductPayload) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	catIdx := slices.IndexFunc(m.categories, func(c Category) bool { return c.ID == p.CategoryID })
	if catIdx < 0 {
		return Product{}, fmt.Errorf("save product %s: %w", p.SKU, ErrUnknownCategory)
	}

	for _, existing := range m.products {
		if existing.SKU == p.SKU && existing.ID != p.ID {
			return Product{}, fmt.Errorf("save product %s: %w", p.SKU, ErrDuplicateSKU)
		}
	}

	now := m.now()
	saved := Product{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		HidePrice:    p.HidePrice,
		StockStatus:  p.StockStatus,
		CategoryID:   p.CategoryID,
		CategoryName: m.categories[catIdx].Name,
		Features:     slices.Clone(p.Features),
		Images:       slices.Clone(p.Images),
		UpdatedAt:    now,
	}

	if p.ID == "" {
		saved.ID = uuid.NewString()
		saved.CreatedAt = now
		m.products = append(m.products, saved)
		return cloneProduct(saved), nil
	}

	idx := slices.IndexFunc(m.products, func(existing Product) bool { return existing.ID == p.ID })
	if idx < 0 {
		return Product{}, fmt.Errorf("save product %s: %w", p.SKU, ErrProductNotFound)
	}
	saved.CreatedAt = m.products[idx].CreatedAt
	m.products[idx] = saved
	return cloneProduct(saved), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func cloneProduct(p Product) Product {
	p.Features = slices.Clone(p.Features)
	p.Images = slices.Clone(p.Images)
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}
