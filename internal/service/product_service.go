package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"gatepass/internal/errors"
	"gatepass/internal/model"
	"gatepass/internal/repository"
)

// ProductInput carries the editable fields of a catalog entry.
type ProductInput struct {
	ItemCode        string  `json:"item_code"`
	ItemDescription string  `json:"item_description"`
	ItemGroup       *string `json:"item_group"`
}

// BulkResult summarizes a bulk import.
type BulkResult struct {
	Created int      `json:"created"`
	Skipped []string `json:"skipped"`
}

// ProductService manages the product catalog.
type ProductService interface {
	List(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	BulkCreate(ctx context.Context, items []ProductInput) (*BulkResult, error)
	Update(ctx context.Context, id uint, in ProductInput) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
}

type productService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

// groupOrNil treats a blank group as no group.
func groupOrNil(group *string) *string {
	if group == nil {
		return nil
	}
	g := strings.TrimSpace(*group)
	if g == "" {
		return nil
	}
	return &g
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Create adds a product, rejecting a code that is already in the catalog.
func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	_, err := s.repo.FindByCode(ctx, in.ItemCode)
	if err == nil {
		return nil, errors.ErrItemCodeExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check item code: %w", err)
	}

	product := &model.Product{
		ItemCode:        in.ItemCode,
		ItemDescription: in.ItemDescription,
		ItemGroup:       groupOrNil(in.ItemGroup),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrItemCodeExists
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// BulkCreate inserts each entry on its own. Entries without a code or
// description are dropped; codes already present, in storage or earlier in
// the batch, are reported as skipped.
func (s *productService) BulkCreate(ctx context.Context, items []ProductInput) (*BulkResult, error) {
	result := &BulkResult{Skipped: []string{}}
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		code := strings.TrimSpace(item.ItemCode)
		desc := strings.TrimSpace(item.ItemDescription)
		if code == "" || desc == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			result.Skipped = append(result.Skipped, code)
			continue
		}
		seen[code] = struct{}{}

		_, err := s.repo.FindByCode(ctx, code)
		if err == nil {
			result.Skipped = append(result.Skipped, code)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check item code %q: %w", code, err)
		}

		product := &model.Product{
			ItemCode:        code,
			ItemDescription: desc,
			ItemGroup:       groupOrNil(item.ItemGroup),
		}
		if err := s.repo.Create(ctx, product); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result.Skipped = append(result.Skipped, code)
				continue
			}
			return nil, fmt.Errorf("create product %q: %w", code, err)
		}
		result.Created++
	}
	return result, nil
}

// Update overwrites a product. The code is not checked against other rows
// up front; a clash caught by the unique index is reported as
// ErrItemCodeExists.
func (s *productService) Update(ctx context.Context, id uint, in ProductInput) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	product.ItemCode = in.ItemCode
	product.ItemDescription = in.ItemDescription
	product.ItemGroup = groupOrNil(in.ItemGroup)
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrItemCodeExists
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return errors.ErrProductNotFound
	}
	return nil
}
