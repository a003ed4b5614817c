// Package catalog exposes warehouse and product browsing on top of
// the commerce API.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/sorodev/marketplace-client/internal/api"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
	"github.com/sorodev/marketplace-client/pkg/logger"
)

// Browser is the slice of the API client the catalog needs.
type Browser interface {
	ListEntrepots(ctx context.Context) ([]api.Entrepot, error)
	ListProducts(ctx context.Context, entrepotID int64) ([]api.Product, error)
	GetProduct(ctx context.Context, productID, entrepotID int64) (*api.Product, error)
}

type Service interface {
	Entrepots(ctx context.Context) ([]api.Entrepot, error)
	Products(ctx context.Context, entrepotID int64) ([]api.Product, error)
	Product(ctx context.Context, productID, entrepotID int64) (*api.Product, error)
	SearchProducts(ctx context.Context, entrepotID int64, query string) ([]api.Product, error)
}

type service struct {
	browser Browser
	log     *logger.Logger
}

func NewService(browser Browser, logg *logger.Logger) (Service, error) {
	if browser == nil {
		return nil, fmt.Errorf("browser required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{browser: browser, log: logg}, nil
}

func (s *service) Entrepots(ctx context.Context) ([]api.Entrepot, error) {
	return s.browser.ListEntrepots(ctx)
}

func (s *service) Products(ctx context.Context, entrepotID int64) ([]api.Product, error) {
	if entrepotID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "select a warehouse first")
	}
	return s.browser.ListProducts(ctx, entrepotID)
}

func (s *service) Product(ctx context.Context, productID, entrepotID int64) (*api.Product, error) {
	if productID <= 0 || entrepotID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product and warehouse identifiers required")
	}
	return s.browser.GetProduct(ctx, productID, entrepotID)
}

// SearchProducts filters the warehouse catalog by a case-insensitive
// match on product name or code.
func (s *service) SearchProducts(ctx context.Context, entrepotID int64, query string) ([]api.Product, error) {
	products, err := s.Products(ctx, entrepotID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return products, nil
	}
	matched := make([]api.Product, 0, len(products))
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Name), needle) ||
			strings.Contains(strings.ToLower(product.Code), needle) {
			matched = append(matched, product)
		}
	}
	return matched, nil
}
