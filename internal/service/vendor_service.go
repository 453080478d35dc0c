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

type VendorService interface {
	Create(ctx context.Context, req dto.CreateVendorRequest) (*dto.VendorResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.VendorResponse, error)
	List(ctx context.Context) ([]dto.VendorResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateVendorRequest) (*dto.VendorResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type vendorService struct {
	vendors repository.VendorRepository
}

func NewVendorService(vendors repository.VendorRepository) VendorService {
	return &vendorService{vendors: vendors}
}

func (s *vendorService) Create(ctx context.Context, req dto.CreateVendorRequest) (*dto.VendorResponse, error) {
	v := model.Vendor{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		IsActive: true,
	}
	if err := s.vendors.Create(ctx, &v); err != nil {
		return nil, err
	}
	return vendorToResponse(&v), nil
}

func (s *vendorService) Get(ctx context.Context, id uuid.UUID) (*dto.VendorResponse, error) {
	v, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Vendor not found")
		}
		return nil, err
	}
	return vendorToResponse(v), nil
}

func (s *vendorService) List(ctx context.Context) ([]dto.VendorResponse, error) {
	vendors, err := s.vendors.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendorResponse, 0, len(vendors))
	for i := range vendors {
		out = append(out, *vendorToResponse(&vendors[i]))
	}
	return out, nil
}

func (s *vendorService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateVendorRequest) (*dto.VendorResponse, error) {
	v, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Vendor not found")
		}
		return nil, err
	}

	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Phone != nil {
		v.Phone = req.Phone
	}
	if req.Email != nil {
		v.Email = req.Email
	}
	if req.Address != nil {
		v.Address = req.Address
	}

	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, err
	}
	return vendorToResponse(v), nil
}

func (s *vendorService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.vendors.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Vendor not found")
		}
		return err
	}
	return s.vendors.SetActive(ctx, id, false)
}

func vendorToResponse(v *model.Vendor) *dto.VendorResponse {
	return &dto.VendorResponse{
		ID:       v.ID,
		Name:     v.Name,
		Phone:    v.Phone,
		Email:    v.Email,
		Address:  v.Address,
		IsActive: v.IsActive,
	}
}
