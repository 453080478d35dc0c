package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"backstock/internal/apierror"
	"backstock/internal/dto"
	"backstock/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReturnFixture() (*stubStore, ReturnService) {
	store := newStubStore()
	svc := NewReturnService(
		&stubTxRunner{store: store},
		&stubVendorProductRepo{store: store},
		&stubBillRepo{store: store},
		&stubReturnRepo{store: store},
		nil,
		5,
	)
	return store, svc
}

func intPtr(v int) *int { return &v }

func TestSubmitVendorReturn(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))

	resp, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       3,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, *store.vendorProducts[vp.ID].Stock)
	assert.Equal(t, 3, resp.ReturnQty)
	assert.Equal(t, model.ReturnTypeNotSold, resp.ReturnType)
	assert.Equal(t, model.ReturnStatusPending, resp.Status)
	assert.Regexp(t, `^RET-[0-9A-F]{8}$`, resp.ReturnReference)
	assert.Nil(t, resp.CustomerReturn)
	assert.Len(t, store.returns, 1)
	assert.Empty(t, store.customerReturns)
}

func TestSubmitInsufficientStock(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(2))

	_, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       5,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))
	assert.Equal(t, "Return quantity cannot be greater than stock count.", err.Error())

	// Nothing mutated.
	assert.Equal(t, 2, *store.vendorProducts[vp.ID].Stock)
	assert.Empty(t, store.returns)
}

func TestSubmitNilStockRefused(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(nil)

	_, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       1,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))
	assert.Empty(t, store.returns)
}

func TestSubmitMergesIntoPending(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))

	first, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       3,
	})
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       2,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.ReturnQty)
	assert.Equal(t, first.ReturnReference, second.ReturnReference)
	assert.Equal(t, 5, *store.vendorProducts[vp.ID].Stock)
	require.Len(t, store.pendingFor(vp.ID), 1)
	assert.Equal(t, 5, store.pendingFor(vp.ID)[0].ReturnQty)
}

func TestSubmitCustomerReturnRoundTrip(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))
	bill := store.addBill("INV-1001", vp.ID)

	resp, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindCustomer,
		VendorProductID: vp.ID.String(),
		ReturnQty:       2,
		InvoiceNum:      "INV-1001",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ReturnTypeSold, resp.ReturnType)
	require.NotNil(t, resp.BillID)
	assert.Equal(t, bill.ID, *resp.BillID)
	require.NotNil(t, resp.CustomerReturn)
	assert.Equal(t, resp.ID, resp.CustomerReturn.ProductReturnID)
	assert.Equal(t, bill.ID, resp.CustomerReturn.BillID)
	assert.Equal(t, "INV-1001", resp.CustomerReturn.InvoiceNo)
	assert.Equal(t, 8, *store.vendorProducts[vp.ID].Stock)
	assert.Len(t, store.customerReturns, 1)
}

func TestSubmitCustomerMergeSkipsLinkage(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))
	store.addBill("INV-1001", vp.ID)

	req := dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindCustomer,
		VendorProductID: vp.ID.String(),
		ReturnQty:       2,
		InvoiceNum:      "INV-1001",
	}
	first, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, first.CustomerReturn)

	second, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.ReturnQty)
	assert.Nil(t, second.CustomerReturn)
	assert.Len(t, store.customerReturns, 1)
}

func TestSubmitUnknownInvoice(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))

	_, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindCustomer,
		VendorProductID: vp.ID.String(),
		ReturnQty:       2,
		InvoiceNum:      "INV-NOPE",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvoiceNotFound, apierror.KindOf(err))
	assert.Equal(t, "Invalid invoice number.", err.Error())
	assert.Equal(t, 10, *store.vendorProducts[vp.ID].Stock)
	assert.Empty(t, store.returns)
}

func TestSubmitProductNotInInvoice(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))
	other := store.addVendorProduct(intPtr(4))
	store.addBill("INV-1001", other.ID)

	_, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindCustomer,
		VendorProductID: vp.ID.String(),
		ReturnQty:       2,
		InvoiceNum:      "INV-1001",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindProductNotInInvoice, apierror.KindOf(err))
	assert.Equal(t, 10, *store.vendorProducts[vp.ID].Stock)
	assert.Empty(t, store.returns)
}

func TestSubmitValidation(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))

	cases := []struct {
		name  string
		req   dto.SubmitReturnRequest
		kind  apierror.Kind
		field string
	}{
		{
			name:  "missing return type",
			req:   dto.SubmitReturnRequest{VendorProductID: vp.ID.String(), ReturnQty: 1},
			kind:  apierror.KindMissingField,
			field: "return_type",
		},
		{
			name:  "unknown return type",
			req:   dto.SubmitReturnRequest{ReturnType: "9", VendorProductID: vp.ID.String(), ReturnQty: 1},
			kind:  apierror.KindInvalidChoice,
			field: "return_type",
		},
		{
			name:  "missing vendor product",
			req:   dto.SubmitReturnRequest{ReturnType: dto.ReturnKindVendor, ReturnQty: 1},
			kind:  apierror.KindMissingField,
			field: "vendor_product_id",
		},
		{
			name:  "malformed vendor product",
			req:   dto.SubmitReturnRequest{ReturnType: dto.ReturnKindVendor, VendorProductID: "not-a-uuid", ReturnQty: 1},
			kind:  apierror.KindInvalidValue,
			field: "vendor_product_id",
		},
		{
			name:  "missing quantity",
			req:   dto.SubmitReturnRequest{ReturnType: dto.ReturnKindVendor, VendorProductID: vp.ID.String()},
			kind:  apierror.KindMissingField,
			field: "return_qty",
		},
		{
			name:  "negative quantity",
			req:   dto.SubmitReturnRequest{ReturnType: dto.ReturnKindVendor, VendorProductID: vp.ID.String(), ReturnQty: -2},
			kind:  apierror.KindInvalidValue,
			field: "return_qty",
		},
		{
			name:  "customer without invoice",
			req:   dto.SubmitReturnRequest{ReturnType: dto.ReturnKindCustomer, VendorProductID: vp.ID.String(), ReturnQty: 1},
			kind:  apierror.KindMissingField,
			field: "invoice_num",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apierror.KindOf(err))
			assert.Contains(t, apierror.Fields(err), tc.field)
		})
	}

	assert.Equal(t, 10, *store.vendorProducts[vp.ID].Stock)
	assert.Empty(t, store.returns)
}

func TestSubmitUnknownVendorProduct(t *testing.T) {
	_, svc := newReturnFixture()

	_, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: "b2b86a0e-445b-4db7-9b27-9f8a297d2c0f",
		ReturnQty:       1,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestSubmitSequentialDrainsStock(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))

	for _, qty := range []int{3, 4} {
		_, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
			ReturnType:      dto.ReturnKindVendor,
			VendorProductID: vp.ID.String(),
			ReturnQty:       qty,
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, *store.vendorProducts[vp.ID].Stock)

	// A further request above the remaining stock is refused on the fresh
	// value, not the original one.
	_, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       4,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))
	assert.Equal(t, 3, *store.vendorProducts[vp.ID].Stock)
	require.Len(t, store.pendingFor(vp.ID), 1)
	assert.Equal(t, 7, store.pendingFor(vp.ID)[0].ReturnQty)
}

func TestSubmitConcurrentReturns(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))

	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), dto.SubmitReturnRequest{
				ReturnType:      dto.ReturnKindVendor,
				VendorProductID: vp.ID.String(),
				ReturnQty:       3,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))
		}
	}

	// Only three of the five requests fit in the initial stock of ten; the
	// serialized stock check refuses the rest and never drives stock negative.
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 1, *store.vendorProducts[vp.ID].Stock)
	require.Len(t, store.pendingFor(vp.ID), 1)
	assert.Equal(t, 9, store.pendingFor(vp.ID)[0].ReturnQty)
}

func TestResolveReturn(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))

	submitted, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       3,
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), submitted.ID, dto.ResolveReturnRequest{
		Status:         model.ReturnStatusResolved,
		ResolutionType: intPtr(model.ResolutionRefund),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolutionType)
	assert.Equal(t, model.ResolutionRefund, *resolved.ResolutionType)

	// Resolving twice conflicts.
	_, err = svc.Resolve(context.Background(), submitted.ID, dto.ResolveReturnRequest{Status: model.ReturnStatusResolved})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	// A fresh submission opens a new pending case instead of reviving the
	// resolved one.
	next, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       2,
	})
	require.NoError(t, err)
	assert.NotEqual(t, submitted.ID, next.ID)
	assert.Equal(t, 2, next.ReturnQty)
}

func TestResolveConcurrentWithMergeLosesNothing(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))

	submitted, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       3,
	})
	require.NoError(t, err)

	// A merge and a resolution race for the same pending row. Whichever
	// lands first, the four merged units must survive somewhere: either in
	// the resolved row or in a fresh pending case.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = svc.Submit(context.Background(), dto.SubmitReturnRequest{
			ReturnType:      dto.ReturnKindVendor,
			VendorProductID: vp.ID.String(),
			ReturnQty:       4,
		})
	}()
	go func() {
		defer wg.Done()
		_, _ = svc.Resolve(context.Background(), submitted.ID, dto.ResolveReturnRequest{
			Status: model.ReturnStatusResolved,
		})
	}()
	wg.Wait()

	assert.Equal(t, 3, *store.vendorProducts[vp.ID].Stock)
	total := 0
	for _, pr := range store.returns {
		total += pr.ReturnQty
	}
	assert.Equal(t, 7, total)
}

func TestRejectDoesNotRestoreStock(t *testing.T) {
	store, svc := newReturnFixture()
	vp := store.addVendorProduct(intPtr(10))

	submitted, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vp.ID.String(),
		ReturnQty:       4,
	})
	require.NoError(t, err)
	require.Equal(t, 6, *store.vendorProducts[vp.ID].Stock)

	rejected, err := svc.Resolve(context.Background(), submitted.ID, dto.ResolveReturnRequest{Status: model.ReturnStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnStatusRejected, rejected.Status)
	assert.Equal(t, 6, *store.vendorProducts[vp.ID].Stock)
}

func TestResolveInvalidStatus(t *testing.T) {
	_, svc := newReturnFixture()
	_, err := svc.Resolve(context.Background(), uuid.New(), dto.ResolveReturnRequest{Status: 7})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvalidChoice, apierror.KindOf(err))
}

func TestReturnResponseTimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	pr := &model.ProductReturn{ReturnDate: time.Date(2026, 3, 1, 9, 30, 0, 0, loc)}

	resp := returnToResponse(pr)
	assert.Equal(t, "2026-03-01T04:00:00Z", resp.ReturnDate)
}

func TestListReturnsFilters(t *testing.T) {
	store, svc := newReturnFixture()
	vpA := store.addVendorProduct(intPtr(10))
	vpB := store.addVendorProduct(intPtr(10))
	store.addBill("INV-1001", vpB.ID)

	_, err := svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: vpA.ID.String(),
		ReturnQty:       1,
	})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindCustomer,
		VendorProductID: vpB.ID.String(),
		ReturnQty:       1,
		InvoiceNum:      "INV-1001",
	})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), dto.ReturnFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Returns, 2)
	assert.Equal(t, int64(2), all.Total)

	sold, err := svc.List(context.Background(), dto.ReturnFilter{ReturnType: model.ReturnTypeSold})
	require.NoError(t, err)
	require.Len(t, sold.Returns, 1)
	assert.Equal(t, vpB.ID, sold.Returns[0].VendorProductID)
}
