package product

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	errors "github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/common/validation"
	productDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/product"
	"github.com/frahmantamala/star-supla/internal/object"
)

// Table is both the object table and the upload page name for product
// images.
const Table = "Products"

type Product = productDatamodel.Product

type RepositoryAPI interface {
	List(ctx context.Context, opts object.ListOptions) (*object.Page[productDatamodel.Product], error)
	Get(ctx context.Context, id string) (*productDatamodel.Product, error)
	Create(ctx context.Context, data productDatamodel.Product) (string, error)
	Update(ctx context.Context, id string, data productDatamodel.Product) error
	Delete(ctx context.Context, id string) error
	Upload(ctx context.Context, file object.File, resize bool) (string, error)
	DeleteUpload(ctx context.Context, fileURL string) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAll(ctx context.Context) ([]Product, error) {
	page, err := s.repo.List(ctx, object.ListOptions{})
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.StatusCode == http.StatusNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// Create stores a product. The image must have been uploaded first.
func (s *Service) Create(ctx context.Context, p Product) (string, error) {
	p.ID = ""
	if err := validation.ValidateProduct(p.Name, p.ImageURL, p.Stock); err != nil {
		return "", err
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		s.logger.Error("failed to create product", "name", p.Name, "error", err)
		return "", err
	}

	s.logger.Info("product created", "product_id", id, "stock", p.Stock)
	return id, nil
}

func (s *Service) Update(ctx context.Context, p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := validation.ValidateProduct(p.Name, p.ImageURL, p.Stock); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, p.ID, p); err != nil {
		s.logger.Error("failed to update product", "product_id", p.ID, "error", err)
		return err
	}
	return nil
}

// Delete removes the product's image, then the product. A failed image
// removal leaves the product in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if p.ImageURL != "" {
		if err := s.DeleteImage(ctx, p.ImageURL); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete product", "product_id", id, "error", err)
		return err
	}

	s.logger.Info("product deleted", "product_id", id)
	return nil
}

// UploadImage stores a resized copy of file and returns its URL.
func (s *Service) UploadImage(ctx context.Context, file object.File) (string, error) {
	url, err := s.repo.Upload(ctx, file, true)
	if err != nil {
		s.logger.Error("failed to upload product image", "file_name", file.Name, "error", err)
		return "", err
	}
	return url, nil
}

func (s *Service) DeleteImage(ctx context.Context, imageURL string) error {
	removed, err := s.repo.DeleteUpload(ctx, imageURL)
	if err != nil {
		s.logger.Error("failed to delete product image", "image_url", imageURL, "error", err)
		return err
	}
	if !removed {
		s.logger.Warn("product image was already gone", "image_url", imageURL)
	}
	return nil
}

// Active keeps products that can be reserved.
func Active(products []Product) []Product {
	var out []Product
	for _, p := range products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}
