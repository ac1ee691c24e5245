package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/idgen"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/port"
)

var ErrInvalidProduct = errors.New("invalid product")

type ProductInput struct {
	Name      string
	Category  string
	Price     float64
	Stock     int
	ImagePath string
}

// InventoryService owns product records. Stock quantities themselves
// are only ever mutated by the placement and cancellation transactions;
// edits here replace the stored value from an inventory screen.
type InventoryService struct {
	repo port.DatabaseRepository
	ids  *idgen.Generator
	log  zerolog.Logger
}

func NewInventoryService(repo port.DatabaseRepository, ids *idgen.Generator, log zerolog.Logger) *InventoryService {
	return &InventoryService{repo: repo, ids: ids, log: log}
}

// CreateProduct assigns a collision-checked numeric ID taken from the
// generated CODE-NNN identifier and derives the initial status from the
// starting stock.
func (s *InventoryService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price %.2f", ErrInvalidProduct, in.Price)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock %d", ErrInvalidProduct, in.Stock)
	}

	exists := func(ctx context.Context, id string) (bool, error) {
		n, err := idgen.Number(id)
		if err != nil {
			return false, err
		}
		return s.repo.ProductIDExists(ctx, n)
	}
	displayID, outcome, err := s.ids.CategoryID(ctx, in.Category, exists)
	if err != nil {
		return nil, fmt.Errorf("generate product id: %w", err)
	}
	if outcome == idgen.OutcomeFallback {
		s.log.Warn().Str("product_id", displayID).Msg("product id retries exhausted, using unchecked fallback")
	}
	number, err := idgen.Number(displayID)
	if err != nil {
		return nil, fmt.Errorf("generate product id: %w", err)
	}

	product := domain.Product{
		ID:        number,
		Name:      strings.TrimSpace(in.Name),
		Category:  strings.TrimSpace(in.Category),
		Price:     in.Price,
		Stock:     in.Stock,
		Status:    domain.StatusForStock(in.Stock),
		ImagePath: in.ImagePath,
		DateAdded: time.Now(),
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product %s: %w", displayID, err)
	}

	s.log.Info().Str("display_id", displayID).Int("product_id", product.ID).Str("category", product.Category).Msg("product created")
	return &product, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	return product, nil
}

func (s *InventoryService) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies inventory edits. The status is re-derived from
// the new stock unless the product is explicitly Discontinued.
func (s *InventoryService) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(product.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if product.Price < 0 || product.Stock < 0 {
		return nil, fmt.Errorf("%w: negative price or stock", ErrInvalidProduct)
	}
	if product.Status != domain.ProductDiscontinued {
		product.Status = domain.StatusForStock(product.Stock)
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("update product %d: %w", product.ID, err)
	}
	return &product, nil
}

// DisplayID renders the category-coded identifier shown to users,
// e.g. CLA-042. The numeric part alone is the unique key.
func DisplayID(product domain.Product) string {
	return fmt.Sprintf("%s-%03d", idgen.CategoryCode(product.Category), product.ID)
}
