package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"backstock/internal/apierror"
	"backstock/internal/dto"
	"backstock/internal/model"
	"backstock/internal/repository"
	"backstock/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReturnService is the product-return workflow engine. A submission is either
// a vendor return (stock never sold) or a customer return tied to a prior
// invoice; both kinds validate, decrement stock, and persist-or-merge the
// return record as one atomic unit.
type ReturnService interface {
	Submit(ctx context.Context, req dto.SubmitReturnRequest) (*dto.ProductReturnResponse, error)
	Resolve(ctx context.Context, id uuid.UUID, req dto.ResolveReturnRequest) (*dto.ProductReturnResponse, error)
	List(ctx context.Context, filter dto.ReturnFilter) (*dto.ReturnListResponse, error)
}

type returnService struct {
	txr            repository.TxRunner
	vendorProducts repository.VendorProductRepository
	bills          repository.BillRepository
	returns        repository.ReturnRepository
	dispatcher     *worker.Dispatcher
	alertThreshold int
}

func NewReturnService(
	txr repository.TxRunner,
	vendorProducts repository.VendorProductRepository,
	bills repository.BillRepository,
	returns repository.ReturnRepository,
	dispatcher *worker.Dispatcher,
	alertThreshold int,
) ReturnService {
	return &returnService{
		txr:            txr,
		vendorProducts: vendorProducts,
		bills:          bills,
		returns:        returns,
		dispatcher:     dispatcher,
		alertThreshold: alertThreshold,
	}
}

// ── Submit ───────────────────────────────────────────────────────────────────
// Validation order:
//  1. return_type present and recognized (dispatches the variant)
//  2. vendor product resolved (locked for the whole unit of work)
//  3. customer kind: bill by invoice_num, then bill item joining that bill
//     and the vendor product
//  4. return_qty <= stock (nil stock never satisfies the check)
//
// Only then: stock decrement + merge-or-create, all inside one transaction.
// The vendor product row and any Pending return row are locked FOR UPDATE so
// two concurrent submissions against the same offer serialize — neither can
// pass the stock check on a stale value or insert a duplicate Pending row.

func (s *returnService) Submit(ctx context.Context, req dto.SubmitReturnRequest) (*dto.ProductReturnResponse, error) {
	if req.ReturnType == "" {
		return nil, apierror.MissingField("return_type")
	}
	if req.ReturnType != dto.ReturnKindVendor && req.ReturnType != dto.ReturnKindCustomer {
		return nil, apierror.InvalidChoice("return_type")
	}
	isCustomer := req.ReturnType == dto.ReturnKindCustomer

	if req.VendorProductID == "" {
		return nil, apierror.MissingField("vendor_product_id")
	}
	vpID, err := uuid.Parse(req.VendorProductID)
	if err != nil {
		return nil, apierror.InvalidValue("vendor_product_id", "Must be a valid id.")
	}

	if req.ReturnQty == 0 {
		return nil, apierror.MissingField("return_qty")
	}
	if req.ReturnQty < 0 {
		return nil, apierror.InvalidValue("return_qty", "Must be a positive integer.")
	}

	if isCustomer && req.InvoiceNum == "" {
		return nil, apierror.MissingField("invoice_num")
	}

	var (
		result   model.ProductReturn
		custCase *model.CustomerProductReturn
		newStock int
	)

	txErr := s.txr.RunInTx(ctx, func(tx *gorm.DB) error {
		vp, err := s.vendorProducts.FindByIDForUpdateTx(tx, vpID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Vendor product not found")
			}
			return err
		}

		var bill *model.Bill
		var billItem *model.BillItem
		if isCustomer {
			bill, err = s.bills.FindByInvoiceNoTx(tx, req.InvoiceNum)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierror.InvoiceNotFound()
				}
				return err
			}
			billItem, err = s.bills.FindItemTx(tx, bill.ID, vp.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierror.ProductNotInInvoice()
				}
				return err
			}
		}

		// Nil stock is "unknown" — a return can never draw against it.
		if vp.Stock == nil || req.ReturnQty > *vp.Stock {
			return apierror.InsufficientStock()
		}
		newStock = *vp.Stock - req.ReturnQty

		if err := s.vendorProducts.AdjustStockTx(tx, vp.ID, -req.ReturnQty); err != nil {
			return err
		}

		existing, err := s.returns.FindPendingForUpdateTx(tx, vp.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			// Merge: only the quantity accumulates. Reason, resolution, and
			// customer linkage of the incoming request are ignored.
			if err := s.returns.AddQtyTx(tx, existing.ID, req.ReturnQty); err != nil {
				return err
			}
			existing.ReturnQty += req.ReturnQty
			result = *existing
			return nil
		}

		pr := model.ProductReturn{
			VendorProductID: vp.ID,
			ReturnQty:       req.ReturnQty,
			ReturnType:      model.ReturnTypeNotSold,
			ReturnReference: newReturnReference(),
			Status:          model.ReturnStatusPending,
			Reason:          req.Reason,
		}
		if isCustomer {
			pr.ReturnType = model.ReturnTypeSold
			pr.CustomerName = req.CustomerName
			pr.ResolutionType = req.ResolutionType
			pr.BillID = &bill.ID
			pr.BillItemID = &billItem.ID
		}
		if err := s.returns.CreateTx(tx, &pr); err != nil {
			// One retry on a reference collision; the odds are negligible but
			// the unique index makes this detectable.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				pr.ReturnReference = newReturnReference()
				err = s.returns.CreateTx(tx, &pr)
			}
			if err != nil {
				return err
			}
		}

		if isCustomer {
			cpr := model.CustomerProductReturn{
				ProductReturnID: pr.ID,
				BillID:          bill.ID,
				BillItemID:      billItem.ID,
				CustomerName:    req.CustomerName,
				ResolutionType:  req.ResolutionType,
				InvoiceNo:       req.InvoiceNum,
			}
			if err := s.returns.CreateCustomerReturnTx(tx, &cpr); err != nil {
				return err
			}
			custCase = &cpr
		}

		result = pr
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.maybeAlert(ctx, vpID, newStock)

	resp := returnToResponse(&result)
	if custCase != nil {
		resp.CustomerReturn = customerReturnToResponse(custCase)
	}
	return resp, nil
}

// maybeAlert enqueues a low-stock alert after a committed decrement.
// Best effort: a full queue or missing Redis never fails the return.
func (s *returnService) maybeAlert(ctx context.Context, vpID uuid.UUID, newStock int) {
	if s.dispatcher == nil || newStock > s.alertThreshold {
		return
	}
	vp, err := s.vendorProducts.FindByID(ctx, vpID)
	if err != nil {
		return
	}
	payload := worker.StockAlertPayload{
		VendorProductID: vpID.String(),
		Stock:           newStock,
		Threshold:       s.alertThreshold,
	}
	if vp.Product != nil {
		payload.ProductName = vp.Product.Name
	}
	if vp.Vendor != nil {
		payload.VendorName = vp.Vendor.Name
	}
	_ = s.dispatcher.EnqueueStockAlert(ctx, payload)
}

// ── Resolve ──────────────────────────────────────────────────────────────────

func (s *returnService) Resolve(ctx context.Context, id uuid.UUID, req dto.ResolveReturnRequest) (*dto.ProductReturnResponse, error) {
	if req.Status != model.ReturnStatusResolved && req.Status != model.ReturnStatusRejected {
		return nil, apierror.InvalidChoice("status")
	}

	// The row is locked for the duration of the transaction so a Submit
	// merging into the same pending return cannot slip between the status
	// check and the update.
	var pr *model.ProductReturn
	txErr := s.txr.RunInTx(ctx, func(tx *gorm.DB) error {
		var err error
		pr, err = s.returns.FindByIDForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Product return not found")
			}
			return err
		}
		if pr.Status != model.ReturnStatusPending {
			return apierror.Conflict("Return is already resolved")
		}
		if err := s.returns.ResolveTx(tx, id, req.Status, req.ResolutionType); err != nil {
			return err
		}
		pr.Status = req.Status
		if req.ResolutionType != nil {
			pr.ResolutionType = req.ResolutionType
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return returnToResponse(pr), nil
}

// ── List ─────────────────────────────────────────────────────────────────────

func (s *returnService) List(ctx context.Context, filter dto.ReturnFilter) (*dto.ReturnListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	returns, total, err := s.returns.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductReturnResponse, 0, len(returns))
	for i := range returns {
		items = append(items, *returnToResponse(&returns[i]))
	}
	return &dto.ReturnListResponse{
		Returns: items,
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	}, nil
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func returnToResponse(pr *model.ProductReturn) *dto.ProductReturnResponse {
	return &dto.ProductReturnResponse{
		ID:              pr.ID,
		VendorProductID: pr.VendorProductID,
		BillID:          pr.BillID,
		BillItemID:      pr.BillItemID,
		ReturnQty:       pr.ReturnQty,
		ReturnType:      pr.ReturnType,
		CustomerName:    pr.CustomerName,
		ReturnReference: pr.ReturnReference,
		ResolutionType:  pr.ResolutionType,
		Status:          pr.Status,
		Reason:          pr.Reason,
		ReturnDate:      pr.ReturnDate.UTC().Format(time.RFC3339),
	}
}

func customerReturnToResponse(cpr *model.CustomerProductReturn) *dto.CustomerReturnResponse {
	return &dto.CustomerReturnResponse{
		ID:              cpr.ID,
		ProductReturnID: cpr.ProductReturnID,
		BillID:          cpr.BillID,
		BillItemID:      cpr.BillItemID,
		CustomerName:    cpr.CustomerName,
		ResolutionType:  cpr.ResolutionType,
		InvoiceNo:       cpr.InvoiceNo,
	}
}

// newReturnReference generates a short unique reference code like RET-3FA18C2B.
func newReturnReference() string {
	return "RET-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
