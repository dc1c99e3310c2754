package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aura-hype/internal/domain"
	"aura-hype/internal/images"
	"aura-hype/internal/repository"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// CatalogService defines the product catalog operations
type CatalogService interface {
	ListProducts(ctx context.Context, criteria domain.ListCriteria) ([]*domain.Product, error)
	// GetProduct returns nil without error when the product does not exist
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input *domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input *domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)
	Tags() []domain.Tag
	Brands() []domain.BrandGroup
}

type catalogService struct {
	productRepo repository.ProductRepository
	urls        images.URLResolver
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, urls images.URLResolver, logger *zap.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		urls:        urls,
		logger:      logger,
	}
}

// ListProducts lower-cases the tag criterion the same way tags are stored
func (s *catalogService) ListProducts(ctx context.Context, criteria domain.ListCriteria) ([]*domain.Product, error) {
	criteria = domain.ListCriteria{
		Brand:  strings.TrimSpace(criteria.Brand),
		Gender: strings.TrimSpace(criteria.Gender),
		Search: strings.TrimSpace(criteria.Search),
		Tag:    strings.ToLower(strings.TrimSpace(criteria.Tag)),
	}

	products, err := s.productRepo.List(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	for _, product := range products {
		s.attachURLs(product)
	}

	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	s.attachURLs(product)
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input *domain.ProductInput) (*domain.Product, error) {
	normalized, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Create(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("brand", product.Brand),
		zap.Int("extra_images", len(product.ExtraImages)),
	)

	s.attachURLs(product)
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int64, input *domain.ProductInput) (*domain.Product, error) {
	normalized, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Update(ctx, id, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("Product updated",
		zap.Int64("product_id", product.ID),
		zap.Int("extra_images", len(product.ExtraImages)),
	)

	s.attachURLs(product)
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("Product deleted", zap.Int64("product_id", id))
	}
	return deleted, nil
}

func (s *catalogService) Tags() []domain.Tag {
	return domain.ProductTags
}

func (s *catalogService) Brands() []domain.BrandGroup {
	return domain.BrandDirectory()
}

func (s *catalogService) attachURLs(product *domain.Product) {
	product.ImageURL = s.urls.DisplayURL(product.Image)
	for _, extra := range product.ExtraImages {
		extra.ImageURL = s.urls.DisplayURL(extra.Image)
	}
}

// normalizeInput trims every field, maps blank optionals to nil, collapses
// duplicate tags and rejects anything a product cannot be stored with.
func normalizeInput(input *domain.ProductInput) (*domain.ProductInput, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: missing product", ErrInvalidInput)
	}

	normalized := &domain.ProductInput{
		Name:        strings.TrimSpace(input.Name),
		Price:       strings.TrimSpace(input.Price),
		Image:       strings.TrimSpace(input.Image),
		Brand:       strings.TrimSpace(input.Brand),
		Category:    trimOptional(input.Category),
		Gender:      trimOptional(input.Gender),
		Description: trimOptional(input.Description),
		Tags:        normalizeTags(input.Tags),
		ExtraImages: lo.Compact(lo.Map(input.ExtraImages, func(key string, _ int) string {
			return strings.TrimSpace(key)
		})),
	}

	required := []struct{ field, value string }{
		{"name", normalized.Name},
		{"price", normalized.Price},
		{"image", normalized.Image},
		{"brand", normalized.Brand},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: required fields missing: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	if unknown := lo.Reject(normalized.Tags, func(tag string, _ int) bool {
		return domain.IsKnownTag(tag)
	}); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown tags: %s", ErrInvalidInput, strings.Join(unknown, ", "))
	}

	if len(normalized.ExtraImages) == 0 {
		normalized.ExtraImages = nil
	}

	return normalized, nil
}

// normalizeTags trims tags, drops blanks and duplicates keeping the first
// occurrence. An empty result is nil so it is stored as absent.
func normalizeTags(tags []string) []string {
	cleaned := lo.Uniq(lo.Compact(lo.Map(tags, func(tag string, _ int) string {
		return strings.ToLower(strings.TrimSpace(tag))
	})))
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
