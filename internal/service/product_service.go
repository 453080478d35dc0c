package service

import (
	"context"
	"errors"
	"time"

	"backstock/internal/apierror"
	"backstock/internal/dto"
	"backstock/internal/model"
	"backstock/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)

	// DropdownData bundles the brief lists the front office needs to populate
	// its selectors in one round trip.
	DropdownData(ctx context.Context) (*dto.DropdownDataResponse, error)
}

type productService struct {
	products       repository.ProductRepository
	categories     repository.CategoryRepository
	vendors        repository.VendorRepository
	vendorProducts repository.VendorProductRepository
}

func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	vendors repository.VendorRepository,
	vendorProducts repository.VendorProductRepository,
) ProductService {
	return &productService{
		products:       products,
		categories:     categories,
		vendors:        vendors,
		vendorProducts: vendorProducts,
	}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, apierror.InvalidValue("category_id", "Must be a valid id.")
	}
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Category not found")
		}
		return nil, err
	}
	if !category.IsActive {
		return nil, apierror.InvalidValue("category_id", "Category is inactive.")
	}

	exists, err := s.products.ExistsActiveByName(ctx, categoryID, req.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierror.Conflict("Product with this name already exists in the category")
	}

	p := model.Product{
		Name:       req.Name,
		CategoryID: categoryID,
		ImageURL:   req.ImageURL,
		IsActive:   true,
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return nil, err
	}
	p.Category = category
	return s.toResponse(ctx, &p)
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Product not found")
		}
		return nil, err
	}
	return s.toResponse(ctx, p)
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
	}
	counts, err := s.products.StockCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i], counts[products[i].ID]))
	}

	cats, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	catItems := make([]dto.CategoryResponse, 0, len(cats))
	for i := range cats {
		catItems = append(catItems, *categoryToResponse(&cats[i]))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProductListResponse{
		Products:   items,
		Categories: catItems,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Product not found")
		}
		return nil, err
	}

	categoryID := p.CategoryID
	if req.CategoryID != nil {
		categoryID, err = uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, apierror.InvalidValue("category_id", "Must be a valid id.")
		}
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("Category not found")
			}
			return nil, err
		}
	}
	name := p.Name
	if req.Name != nil {
		name = *req.Name
	}

	if name != p.Name || categoryID != p.CategoryID {
		exists, err := s.products.ExistsActiveByName(ctx, categoryID, name, p.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apierror.Conflict("Product with this name already exists in the category")
		}
	}

	p.Name = name
	p.CategoryID = categoryID
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}
	// Save would write back preloaded associations too.
	p.Category = nil
	p.VendorProducts = nil
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Product not found")
		}
		return err
	}
	return s.products.SetActive(ctx, id, false)
}

// Reactivate flips an inactive product back on, re-checking the name
// uniqueness rule against the products that went active in the meantime.
func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Product not found")
		}
		return nil, err
	}
	if p.IsActive {
		return nil, apierror.Conflict("Product is already active")
	}

	exists, err := s.products.ExistsActiveByName(ctx, p.CategoryID, p.Name, p.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierror.Conflict("Product with this name already exists in the category")
	}

	if err := s.products.SetActive(ctx, id, true); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *productService) DropdownData(ctx context.Context) (*dto.DropdownDataResponse, error) {
	products, err := s.products.ListBrief(ctx)
	if err != nil {
		return nil, err
	}
	vendors, err := s.vendors.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	offers, err := s.vendorProducts.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.DropdownDataResponse{
		Products:       make([]dto.BriefItem, 0, len(products)),
		Vendors:        make([]dto.BriefItem, 0, len(vendors)),
		VendorProducts: make([]dto.BriefItem, 0, len(offers)),
	}
	for i := range products {
		resp.Products = append(resp.Products, dto.BriefItem{ID: products[i].ID, Name: products[i].Name})
	}
	for i := range vendors {
		resp.Vendors = append(resp.Vendors, dto.BriefItem{ID: vendors[i].ID, Name: vendors[i].Name})
	}
	for i := range offers {
		name := offers[i].VendorCode
		if offers[i].Product != nil {
			name = offers[i].Product.Name + " (" + offers[i].VendorCode + ")"
		}
		resp.VendorProducts = append(resp.VendorProducts, dto.BriefItem{ID: offers[i].ID, Name: name})
	}
	return resp, nil
}

func (s *productService) toResponse(ctx context.Context, p *model.Product) (*dto.ProductResponse, error) {
	counts, err := s.products.StockCounts(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return nil, err
	}
	return productToResponse(p, counts[p.ID]), nil
}

func productToResponse(p *model.Product, stockCount int) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		ImageURL:       p.ImageURL,
		StockCount:     stockCount,
		IsActive:       p.IsActive,
		VendorProducts: make([]dto.VendorProductResponse, 0, len(p.VendorProducts)),
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
	if p.Category != nil {
		resp.Category = &dto.BriefItem{ID: p.Category.ID, Name: p.Category.Name}
	}
	for i := range p.VendorProducts {
		resp.VendorProducts = append(resp.VendorProducts, *vendorProductToResponse(&p.VendorProducts[i]))
	}
	return resp
}
