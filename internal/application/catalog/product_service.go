package catalog

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService handles product-related business operations.
// Stock quantities are read here but only ever written by the ledger.
type ProductService struct {
	productRepo catalog.ProductRepository
	now         func() time.Time
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		now:         time.Now,
	}
}

// SetClock replaces the time source
func (s *ProductService) SetClock(now func() time.Time) {
	s.now = now
}

// Create creates a new product with zero stock
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(tenantID, req.details(), s.now())
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		product.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.ensureBarcodeFree(ctx, tenantID, product.Barcode, product.ID); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products ordered by name
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if tenantID == uuid.Nil {
		return nil, 0, shared.ErrNoTenantBound
	}

	domainFilter := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   filter.Search,
			Filters:  make(map[string]interface{}),
		}.Normalized(),
		ActiveOnly: filter.ActiveOnly,
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	products, total, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update replaces the product's metadata. Requests that try to change the
// stock quantity are rejected; stock moves only through recorded transactions.
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.UpdateDetails(req.details(), req.StockQty, s.now()); err != nil {
		return nil, err
	}
	if err := s.ensureBarcodeFree(ctx, tenantID, product.Barcode, product.ID); err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateDetails(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

func (s *ProductService) ensureBarcodeFree(ctx context.Context, tenantID uuid.UUID, barcode string, productID uuid.UUID) error {
	if barcode == "" {
		return nil
	}
	exists, err := s.productRepo.ExistsByBarcode(ctx, tenantID, barcode, productID)
	if err != nil {
		return err
	}
	if exists {
		return shared.ErrAlreadyExists.WithMessage("Product with this barcode already exists")
	}
	return nil
}
