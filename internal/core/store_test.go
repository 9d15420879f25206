package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_SaveProduct(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	payload, err := BuildPayload(validRow("A"), "cat-elec")
	if err != nil {
		t.Fatal(err)
	}

	created, err := store.SaveProduct(ctx, payload)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create should assign an ID")
	}
	if created.CategoryName != "Electronics" {
		t.Errorf("CategoryName = %q", created.CategoryName)
	}
	if !created.CreatedAt.Equal(clock) {
		t.Errorf("CreatedAt = %v, want %v", created.CreatedAt, clock)
	}

	clock = clock.Add(time.Hour)
	payload.ID = created.ID
	payload.Features = []string{"new"}
	updated, err := store.SaveProduct(ctx, payload)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("update must keep CreatedAt")
	}
	if !updated.UpdatedAt.Equal(clock) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, clock)
	}
	if len(updated.Features) != 1 || updated.Features[0] != "new" {
		t.Errorf("features not replaced: %q", updated.Features)
	}
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	payload, _ := BuildPayload(validRow("A"), "cat-elec")
	if _, err := store.SaveProduct(ctx, payload); err != nil {
		t.Fatal(err)
	}

	t.Run("duplicate sku", func(t *testing.T) {
		_, err := store.SaveProduct(ctx, payload)
		if !errors.Is(err, ErrDuplicateSKU) {
			t.Errorf("err = %v, want ErrDuplicateSKU", err)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		p, _ := BuildPayload(validRow("B"), "cat-missing")
		_, err := store.SaveProduct(ctx, p)
		if !errors.Is(err, ErrUnknownCategory) {
			t.Errorf("err = %v, want ErrUnknownCategory", err)
		}
	})

	t.Run("update missing product", func(t *testing.T) {
		p, _ := BuildPayload(validRow("C"), "cat-elec")
		p.ID = "does-not-exist"
		_, err := store.SaveProduct(ctx, p)
		if !errors.Is(err, ErrProductNotFound) {
			t.Errorf("err = %v, want ErrProductNotFound", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		p, _ := BuildPayload(validRow("D"), "cat-elec")
		if _, err := store.SaveProduct(cctx, p); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	payload, _ := BuildPayload(validRow("A"), "cat-elec")
	payload.Features = []string{"one"}
	if _, err := store.SaveProduct(ctx, payload); err != nil {
		t.Fatal(err)
	}

	products, _ := store.Products(ctx)
	products[0].Features[0] = "mutated"

	again, _ := store.Products(ctx)
	if again[0].Features[0] != "one" {
		t.Error("Products must return copies")
	}
}

func TestMemoryStore_Categories(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	categories, err := store.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if categories == nil || len(categories) != 0 {
		t.Errorf("categories = %#v, want empty slice", categories)
	}

	added := store.AddCategory("Garden")
	if added.ID == "" {
		t.Error("AddCategory should assign an ID")
	}
	store.RemoveCategory("garden")

	categories, _ = store.Categories(ctx)
	if len(categories) != 0 {
		t.Errorf("RemoveCategory should match case-insensitively, got %+v", categories)
	}
}

type errReader struct {
	categoriesErr error
	productsErr   error
}

func (r errReader) Categories(context.Context) ([]Category, error) {
	return testCategories, r.categoriesErr
}

func (r errReader) Products(context.Context) ([]Product, error) {
	return nil, r.productsErr
}

func TestLoadSnapshot_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := LoadSnapshot(context.Background(), errReader{categoriesErr: boom})
	if !errors.Is(err, boom) || err.Error() != "load categories: boom" {
		t.Errorf("err = %v", err)
	}

	_, err = LoadSnapshot(context.Background(), errReader{productsErr: boom})
	if !errors.Is(err, boom) || err.Error() != "load products: boom" {
		t.Errorf("err = %v", err)
	}
}
