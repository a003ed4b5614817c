package catalog

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sorodev/marketplace-client/internal/api"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
	"github.com/sorodev/marketplace-client/pkg/logger"
)

type stubBrowser struct {
	entrepots []api.Entrepot
	products  []api.Product
	product   *api.Product
	err       error
}

func (s *stubBrowser) ListEntrepots(_ context.Context) ([]api.Entrepot, error) {
	return s.entrepots, s.err
}

func (s *stubBrowser) ListProducts(_ context.Context, _ int64) ([]api.Product, error) {
	return s.products, s.err
}

func (s *stubBrowser) GetProduct(_ context.Context, _, _ int64) (*api.Product, error) {
	return s.product, s.err
}

func newTestService(t *testing.T, browser Browser) Service {
	t.Helper()

	svc, err := NewService(browser, logger.New(logger.Options{Level: zerolog.Disabled}))
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func product(id int64, code, name string) api.Product {
	return api.Product{
		ID:        id,
		Code:      code,
		Name:      name,
		UnitPrice: decimal.NewFromInt(300),
	}
}

func TestProducts_RequiresWarehouse(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubBrowser{})

	_, err := svc.Products(context.Background(), 0)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchProducts_FiltersByNameAndCode(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubBrowser{products: []api.Product{
		product(1, "RIZ-01", "Riz parfume 25kg"),
		product(2, "HUI-02", "Huile vegetale 5L"),
		product(3, "RIZ-05", "Riz local 50kg"),
	}})

	matched, err := svc.SearchProducts(context.Background(), 5, "riz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}

	matched, err = svc.SearchProducts(context.Background(), 5, "HUI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != 2 {
		t.Fatalf("expected code match, got %+v", matched)
	}
}

func TestSearchProducts_EmptyQueryReturnsAll(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubBrowser{products: []api.Product{
		product(1, "RIZ-01", "Riz parfume 25kg"),
	}})

	matched, err := svc.SearchProducts(context.Background(), 5, "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 1 {
		t.Fatalf("expected full catalog, got %d", len(matched))
	}
}

func TestEntrepots_PropagatesFailure(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubBrowser{err: pkgerrors.New(pkgerrors.CodeTransport, "connection refused")})

	_, err := svc.Entrepots(context.Background())
	if !pkgerrors.HasCode(err, pkgerrors.CodeTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
