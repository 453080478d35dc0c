package service

import (
	"context"
	"errors"

	"backstock/internal/apierror"
	"backstock/internal/dto"
	"backstock/internal/model"
	"backstock/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorProductService interface {
	Create(ctx context.Context, req dto.CreateVendorProductRequest) (*dto.VendorProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.VendorProductResponse, error)
	List(ctx context.Context) ([]dto.VendorProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateVendorProductRequest) (*dto.VendorProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type vendorProductService struct {
	vendorProducts repository.VendorProductRepository
	products       repository.ProductRepository
	vendors        repository.VendorRepository
}

func NewVendorProductService(
	vendorProducts repository.VendorProductRepository,
	products repository.ProductRepository,
	vendors repository.VendorRepository,
) VendorProductService {
	return &vendorProductService{
		vendorProducts: vendorProducts,
		products:       products,
		vendors:        vendors,
	}
}

func (s *vendorProductService) Create(ctx context.Context, req dto.CreateVendorProductRequest) (*dto.VendorProductResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.InvalidValue("product_id", "Must be a valid id.")
	}
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return nil, apierror.InvalidValue("vendor_id", "Must be a valid id.")
	}
	if req.Price.IsNegative() || req.Cost.IsNegative() {
		return nil, apierror.InvalidValue("price", "Price and cost cannot be negative.")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Product not found")
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, apierror.InvalidValue("product_id", "Product is inactive.")
	}
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Vendor not found")
		}
		return nil, err
	}
	if !vendor.IsActive {
		return nil, apierror.InvalidValue("vendor_id", "Vendor is inactive.")
	}

	vp := model.VendorProduct{
		ProductID:  productID,
		VendorID:   vendorID,
		VendorCode: req.VendorCode,
		Price:      req.Price,
		Cost:       req.Cost,
		Stock:      req.Stock,
		IsActive:   true,
	}
	if err := s.vendorProducts.Create(ctx, &vp); err != nil {
		return nil, err
	}
	return s.Get(ctx, vp.ID)
}

func (s *vendorProductService) Get(ctx context.Context, id uuid.UUID) (*dto.VendorProductResponse, error) {
	vp, err := s.vendorProducts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Vendor product not found")
		}
		return nil, err
	}
	return vendorProductToResponse(vp), nil
}

func (s *vendorProductService) List(ctx context.Context) ([]dto.VendorProductResponse, error) {
	vps, err := s.vendorProducts.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendorProductResponse, 0, len(vps))
	for i := range vps {
		out = append(out, *vendorProductToResponse(&vps[i]))
	}
	return out, nil
}

func (s *vendorProductService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateVendorProductRequest) (*dto.VendorProductResponse, error) {
	vp, err := s.vendorProducts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Vendor product not found")
		}
		return nil, err
	}

	if req.VendorCode != nil {
		vp.VendorCode = *req.VendorCode
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apierror.InvalidValue("price", "Price cannot be negative.")
		}
		vp.Price = *req.Price
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return nil, apierror.InvalidValue("cost", "Cost cannot be negative.")
		}
		vp.Cost = *req.Cost
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apierror.InvalidValue("stock", "Stock cannot be negative.")
		}
		vp.Stock = req.Stock
	}

	vp.Product = nil
	vp.Vendor = nil
	if err := s.vendorProducts.Update(ctx, vp); err != nil {
		return nil, err
	}
	return s.Get(ctx, vp.ID)
}

// Deactivate removes an offer. Offers already referenced by invoice lines are
// delete-protected: they are only flagged inactive so billing history keeps
// resolving; unreferenced offers are removed outright.
func (s *vendorProductService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.vendorProducts.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Vendor product not found")
		}
		return err
	}
	referenced, err := s.vendorProducts.ReferencedByBillItems(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return s.vendorProducts.SetActive(ctx, id, false)
	}
	if err := s.vendorProducts.Delete(ctx, id); err != nil {
		// Return rows also protect the offer.
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return s.vendorProducts.SetActive(ctx, id, false)
		}
		return err
	}
	return nil
}

func vendorProductToResponse(vp *model.VendorProduct) *dto.VendorProductResponse {
	resp := &dto.VendorProductResponse{
		ID:         vp.ID,
		ProductID:  vp.ProductID,
		VendorCode: vp.VendorCode,
		Price:      vp.Price,
		Cost:       vp.Cost,
		Stock:      vp.Stock,
		IsActive:   vp.IsActive,
	}
	if vp.Vendor != nil {
		resp.Vendor = &dto.BriefItem{ID: vp.Vendor.ID, Name: vp.Vendor.Name}
	}
	return resp
}
