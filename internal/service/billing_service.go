package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"backstock/internal/apierror"
	"backstock/internal/dto"
	"backstock/internal/infra"
	"backstock/internal/model"
	"backstock/internal/repository"
	"backstock/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillingService interface {
	Create(ctx context.Context, req dto.CreateBillRequest) (*dto.BillResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.BillResponse, error)
	List(ctx context.Context, filter dto.BillFilter) (*dto.BillListResponse, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*dto.BillResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// GeneratePDF renders the invoice to the PDF storage dir and returns the
	// file path.
	GeneratePDF(ctx context.Context, id uuid.UUID) (string, error)
}

type billingService struct {
	txr            repository.TxRunner
	bills          repository.BillRepository
	vendorProducts repository.VendorProductRepository
	dispatcher     *worker.Dispatcher
	rdb            *redis.Client
	alertThreshold int
	pdfStoragePath string
}

func NewBillingService(
	txr repository.TxRunner,
	bills repository.BillRepository,
	vendorProducts repository.VendorProductRepository,
	dispatcher *worker.Dispatcher,
	rdb *redis.Client,
	alertThreshold int,
	pdfStoragePath string,
) BillingService {
	return &billingService{
		txr:            txr,
		bills:          bills,
		vendorProducts: vendorProducts,
		dispatcher:     dispatcher,
		rdb:            rdb,
		alertThreshold: alertThreshold,
		pdfStoragePath: pdfStoragePath,
	}
}

// Create validates every line against live stock, decrements the offers, and
// persists the bill in one transaction. Vendor product rows are locked FOR
// UPDATE so a sale and a return against the same offer cannot race past the
// stock check.
func (s *billingService) Create(ctx context.Context, req dto.CreateBillRequest) (*dto.BillResponse, error) {
	if req.Discount.IsNegative() {
		return nil, apierror.InvalidValue("discount", "Discount cannot be negative.")
	}

	// Lock offers in a stable order so two bills touching the same rows in
	// opposite order cannot deadlock each other.
	sort.Slice(req.Items, func(i, j int) bool {
		return req.Items[i].VendorProductID < req.Items[j].VendorProductID
	})

	type lowStock struct {
		id    uuid.UUID
		stock int
	}
	var (
		bill       model.Bill
		alerts     []lowStock
		productIDs []uuid.UUID
	)

	txErr := s.txr.RunInTx(ctx, func(tx *gorm.DB) error {
		invoiceNo := strings.TrimSpace(req.InvoiceNo)
		if invoiceNo == "" {
			invoiceNo = newInvoiceNo()
		} else if _, err := s.bills.FindByInvoiceNoTx(tx, invoiceNo); err == nil {
			return apierror.Conflict("Invoice number already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		net := decimal.Zero
		items := make([]model.BillItem, 0, len(req.Items))
		for _, line := range req.Items {
			vpID, err := uuid.Parse(line.VendorProductID)
			if err != nil {
				return apierror.InvalidValue("vendor_product_id", "Must be a valid id.")
			}
			vp, err := s.vendorProducts.FindByIDForUpdateTx(tx, vpID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierror.NotFound("Vendor product not found")
				}
				return err
			}
			if !vp.IsActive {
				return apierror.InvalidValue("vendor_product_id", "Vendor product is inactive.")
			}
			if vp.Stock == nil || line.Quantity > *vp.Stock {
				return apierror.InsufficientStock()
			}
			if err := s.vendorProducts.AdjustStockTx(tx, vp.ID, -line.Quantity); err != nil {
				return err
			}
			if remaining := *vp.Stock - line.Quantity; remaining <= s.alertThreshold {
				alerts = append(alerts, lowStock{id: vp.ID, stock: remaining})
			}
			productIDs = append(productIDs, vp.ProductID)

			items = append(items, model.BillItem{
				VendorProductID: vp.ID,
				Quantity:        line.Quantity,
				SellingPrice:    line.SellingPrice,
			})
			net = net.Add(line.SellingPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		total := net.Sub(req.Discount)
		if total.IsNegative() {
			return apierror.InvalidValue("discount", "Discount cannot exceed the net amount.")
		}

		bill = model.Bill{
			InvoiceNo:    invoiceNo,
			CustomerName: req.CustomerName,
			NetAmount:    net.Round(2),
			Discount:     req.Discount.Round(2),
			TotalAmount:  total.Round(2),
			Items:        items,
		}
		return s.bills.CreateTx(tx, &bill)
	})
	if txErr != nil {
		return nil, txErr
	}

	for _, a := range alerts {
		s.enqueueAlert(ctx, a.id, a.stock)
	}
	invalidateSalesCache(ctx, s.rdb, productIDs)

	created, err := s.bills.FindByID(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	return billToResponse(created), nil
}

func (s *billingService) enqueueAlert(ctx context.Context, vpID uuid.UUID, stock int) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.StockAlertPayload{
		VendorProductID: vpID.String(),
		Stock:           stock,
		Threshold:       s.alertThreshold,
	}
	if vp, err := s.vendorProducts.FindByID(ctx, vpID); err == nil {
		if vp.Product != nil {
			payload.ProductName = vp.Product.Name
		}
		if vp.Vendor != nil {
			payload.VendorName = vp.Vendor.Name
		}
	}
	_ = s.dispatcher.EnqueueStockAlert(ctx, payload)
}

func (s *billingService) Get(ctx context.Context, id uuid.UUID) (*dto.BillResponse, error) {
	bill, err := s.bills.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Bill not found")
		}
		return nil, err
	}
	return billToResponse(bill), nil
}

func (s *billingService) List(ctx context.Context, filter dto.BillFilter) (*dto.BillListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	bills, total, err := s.bills.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BillResponse, 0, len(bills))
	for i := range bills {
		items = append(items, *billToResponse(&bills[i]))
	}
	return &dto.BillListResponse{Bills: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *billingService) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*dto.BillResponse, error) {
	bill, err := s.bills.FindByInvoiceNo(ctx, strings.TrimSpace(invoiceNo))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Bill not found")
		}
		return nil, err
	}
	return billToResponse(bill), nil
}

// Delete removes the bill and its items. Stock is not restored: deletion is an
// administrative correction, not an un-sale.
func (s *billingService) Delete(ctx context.Context, id uuid.UUID) error {
	bill, err := s.bills.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Bill not found")
		}
		return err
	}
	if err := s.bills.Delete(ctx, id); err != nil {
		return err
	}
	productIDs := make([]uuid.UUID, 0, len(bill.Items))
	for _, it := range bill.Items {
		if it.VendorProduct != nil {
			productIDs = append(productIDs, it.VendorProduct.ProductID)
		}
	}
	invalidateSalesCache(ctx, s.rdb, productIDs)
	return nil
}

func (s *billingService) GeneratePDF(ctx context.Context, id uuid.UUID) (string, error) {
	bill, err := s.bills.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apierror.NotFound("Bill not found")
		}
		return "", err
	}
	return infra.GenerateInvoicePDF(bill, s.pdfStoragePath)
}

func billToResponse(b *model.Bill) *dto.BillResponse {
	items := make([]dto.BillItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		resp := dto.BillItemResponse{
			ID:              it.ID,
			VendorProductID: it.VendorProductID,
			Quantity:        it.Quantity,
			SellingPrice:    it.SellingPrice,
			Subtotal:        it.SellingPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2),
		}
		if it.VendorProduct != nil && it.VendorProduct.Product != nil {
			resp.ProductName = it.VendorProduct.Product.Name
		}
		items = append(items, resp)
	}
	return &dto.BillResponse{
		ID:           b.ID,
		InvoiceNo:    b.InvoiceNo,
		CustomerName: b.CustomerName,
		NetAmount:    b.NetAmount,
		Discount:     b.Discount,
		TotalAmount:  b.TotalAmount,
		Items:        items,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}

// newInvoiceNo generates a server-side invoice number like INV-20260830-4F2A1C.
func newInvoiceNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102"), suffix)
}
