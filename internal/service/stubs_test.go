package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"backstock/internal/dto"
	"backstock/internal/model"
	"backstock/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The stubs below back the service tests with in-memory state. The stub
// transaction runner serializes callbacks with a mutex and restores a snapshot
// when the callback fails, which mirrors what row locks plus rollback give the
// production path.

type stubStore struct {
	mu              sync.Mutex
	vendorProducts  map[uuid.UUID]*model.VendorProduct
	bills           map[uuid.UUID]*model.Bill
	billItems       []*model.BillItem
	returns         []*model.ProductReturn
	customerReturns []*model.CustomerProductReturn

	// Order in which vendor product rows were locked; not part of snapshots.
	lockOrder []uuid.UUID
}

func newStubStore() *stubStore {
	return &stubStore{
		vendorProducts: make(map[uuid.UUID]*model.VendorProduct),
		bills:          make(map[uuid.UUID]*model.Bill),
	}
}

func (s *stubStore) snapshot() *stubStore {
	cp := newStubStore()
	for id, vp := range s.vendorProducts {
		v := *vp
		if vp.Stock != nil {
			stock := *vp.Stock
			v.Stock = &stock
		}
		cp.vendorProducts[id] = &v
	}
	for id, b := range s.bills {
		bc := *b
		cp.bills[id] = &bc
	}
	for _, it := range s.billItems {
		ic := *it
		cp.billItems = append(cp.billItems, &ic)
	}
	for _, pr := range s.returns {
		rc := *pr
		cp.returns = append(cp.returns, &rc)
	}
	for _, cr := range s.customerReturns {
		cc := *cr
		cp.customerReturns = append(cp.customerReturns, &cc)
	}
	return cp
}

func (s *stubStore) restore(from *stubStore) {
	s.vendorProducts = from.vendorProducts
	s.bills = from.bills
	s.billItems = from.billItems
	s.returns = from.returns
	s.customerReturns = from.customerReturns
}

func (s *stubStore) addVendorProduct(stock *int) *model.VendorProduct {
	vp := &model.VendorProduct{
		ID:       uuid.New(),
		IsActive: true,
		Stock:    stock,
	}
	s.vendorProducts[vp.ID] = vp
	return vp
}

func (s *stubStore) addBill(invoiceNo string, vpIDs ...uuid.UUID) *model.Bill {
	b := &model.Bill{ID: uuid.New(), InvoiceNo: invoiceNo, CreatedAt: time.Now()}
	s.bills[b.ID] = b
	for _, vpID := range vpIDs {
		s.billItems = append(s.billItems, &model.BillItem{
			ID:              uuid.New(),
			BillID:          b.ID,
			VendorProductID: vpID,
			Quantity:        1,
		})
	}
	return b
}

func (s *stubStore) pendingFor(vpID uuid.UUID) []*model.ProductReturn {
	var out []*model.ProductReturn
	for _, pr := range s.returns {
		if pr.VendorProductID == vpID && pr.Status == model.ReturnStatusPending {
			out = append(out, pr)
		}
	}
	return out
}

// ── Transaction runner ───────────────────────────────────────────────────────

type stubTxRunner struct{ store *stubStore }

func (r *stubTxRunner) RunInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	before := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(before)
		return err
	}
	return nil
}

var _ repository.TxRunner = (*stubTxRunner)(nil)

// ── Vendor product repository ────────────────────────────────────────────────

type stubVendorProductRepo struct{ store *stubStore }

var _ repository.VendorProductRepository = (*stubVendorProductRepo)(nil)

func (r *stubVendorProductRepo) Create(ctx context.Context, vp *model.VendorProduct) error {
	vp.ID = uuid.New()
	r.store.vendorProducts[vp.ID] = vp
	return nil
}

func (r *stubVendorProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.VendorProduct, error) {
	vp, ok := r.store.vendorProducts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vp, nil
}

func (r *stubVendorProductRepo) ListActive(ctx context.Context) ([]model.VendorProduct, error) {
	var out []model.VendorProduct
	for _, vp := range r.store.vendorProducts {
		if vp.IsActive {
			out = append(out, *vp)
		}
	}
	return out, nil
}

func (r *stubVendorProductRepo) Update(ctx context.Context, vp *model.VendorProduct) error {
	r.store.vendorProducts[vp.ID] = vp
	return nil
}

func (r *stubVendorProductRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if vp, ok := r.store.vendorProducts[id]; ok {
		vp.IsActive = active
	}
	return nil
}

func (r *stubVendorProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for _, pr := range r.store.returns {
		if pr.VendorProductID == id {
			return gorm.ErrForeignKeyViolated
		}
	}
	delete(r.store.vendorProducts, id)
	return nil
}

func (r *stubVendorProductRepo) ReferencedByBillItems(ctx context.Context, id uuid.UUID) (bool, error) {
	for _, it := range r.store.billItems {
		if it.VendorProductID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubVendorProductRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.VendorProduct, error) {
	r.store.lockOrder = append(r.store.lockOrder, id)
	vp, ok := r.store.vendorProducts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *vp
	if vp.Stock != nil {
		stock := *vp.Stock
		cp.Stock = &stock
	}
	return &cp, nil
}

func (r *stubVendorProductRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	vp, ok := r.store.vendorProducts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if vp.Stock == nil {
		return nil
	}
	next := *vp.Stock + delta
	vp.Stock = &next
	return nil
}

// ── Bill repository ──────────────────────────────────────────────────────────

type stubBillRepo struct {
	store *stubStore
	sales *repository.SalesAggregate
}

var _ repository.BillRepository = (*stubBillRepo)(nil)

func (r *stubBillRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	b, ok := r.store.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	cp.Items = nil
	for _, it := range r.store.billItems {
		if it.BillID == b.ID {
			cp.Items = append(cp.Items, *it)
		}
	}
	return &cp, nil
}

func (r *stubBillRepo) FindByInvoiceNo(ctx context.Context, invoiceNo string) (*model.Bill, error) {
	return r.FindByInvoiceNoTx(nil, invoiceNo)
}

func (r *stubBillRepo) List(ctx context.Context, filter dto.BillFilter) ([]model.Bill, int64, error) {
	var out []model.Bill
	for _, b := range r.store.bills {
		if filter.InvoiceNo != "" && !strings.Contains(b.InvoiceNo, filter.InvoiceNo) {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *stubBillRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.bills, id)
	kept := r.store.billItems[:0]
	for _, it := range r.store.billItems {
		if it.BillID != id {
			kept = append(kept, it)
		}
	}
	r.store.billItems = kept
	return nil
}

func (r *stubBillRepo) CreateTx(tx *gorm.DB, b *model.Bill) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	for i := range b.Items {
		b.Items[i].ID = uuid.New()
		b.Items[i].BillID = b.ID
		it := b.Items[i]
		r.store.billItems = append(r.store.billItems, &it)
	}
	cp := *b
	cp.Items = nil
	r.store.bills[b.ID] = &cp
	return nil
}

func (r *stubBillRepo) FindByInvoiceNoTx(tx *gorm.DB, invoiceNo string) (*model.Bill, error) {
	for _, b := range r.store.bills {
		if b.InvoiceNo == invoiceNo {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBillRepo) FindItemTx(tx *gorm.DB, billID, vendorProductID uuid.UUID) (*model.BillItem, error) {
	for _, it := range r.store.billItems {
		if it.BillID == billID && it.VendorProductID == vendorProductID {
			return it, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBillRepo) SalesAnalysis(ctx context.Context, productID uuid.UUID, monthStart, twoDaysAgo time.Time) (*repository.SalesAggregate, error) {
	if r.sales != nil {
		return r.sales, nil
	}
	return &repository.SalesAggregate{}, nil
}

// ── Catalog repositories ─────────────────────────────────────────────────────

type stubCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (r *stubCategoryRepo) Create(ctx context.Context, c *model.Category) error {
	c.ID = uuid.New()
	r.categories[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCategoryRepo) FindByName(ctx context.Context, name string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Name == name && c.IsActive {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) ListActive(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) Update(ctx context.Context, c *model.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if c, ok := r.categories[id]; ok {
		c.IsActive = active
	}
	return nil
}

type stubVendorRepo struct {
	vendors map[uuid.UUID]*model.Vendor
}

var _ repository.VendorRepository = (*stubVendorRepo)(nil)

func newStubVendorRepo() *stubVendorRepo {
	return &stubVendorRepo{vendors: make(map[uuid.UUID]*model.Vendor)}
}

func (r *stubVendorRepo) Create(ctx context.Context, v *model.Vendor) error {
	v.ID = uuid.New()
	r.vendors[v.ID] = v
	return nil
}

func (r *stubVendorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVendorRepo) ListActive(ctx context.Context) ([]model.Vendor, error) {
	var out []model.Vendor
	for _, v := range r.vendors {
		if v.IsActive {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubVendorRepo) Update(ctx context.Context, v *model.Vendor) error {
	r.vendors[v.ID] = v
	return nil
}

func (r *stubVendorRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if v, ok := r.vendors[id]; ok {
		v.IsActive = active
	}
	return nil
}

type stubProductRepo struct {
	products    map[uuid.UUID]*model.Product
	stockCounts map[uuid.UUID]int
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:    make(map[uuid.UUID]*model.Product),
		stockCounts: make(map[uuid.UUID]int),
	}
}

func (r *stubProductRepo) Create(ctx context.Context, p *model.Product) error {
	p.ID = uuid.New()
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		switch filter.Active {
		case "false":
			if p.IsActive {
				continue
			}
		case "all":
		default:
			if !p.IsActive {
				continue
			}
		}
		if filter.Name != "" && !strings.Contains(p.Name, filter.Name) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(ctx context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if p, ok := r.products[id]; ok {
		p.IsActive = active
	}
	return nil
}

func (r *stubProductRepo) ListBrief(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) ExistsActiveByName(ctx context.Context, categoryID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	for _, p := range r.products {
		if p.CategoryID == categoryID && p.Name == name && p.IsActive && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductRepo) StockCounts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int)
	for _, id := range productIDs {
		if n, ok := r.stockCounts[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

// ── Return repository ────────────────────────────────────────────────────────

type stubReturnRepo struct{ store *stubStore }

var _ repository.ReturnRepository = (*stubReturnRepo)(nil)

func (r *stubReturnRepo) FindPendingForUpdateTx(tx *gorm.DB, vendorProductID uuid.UUID) (*model.ProductReturn, error) {
	for _, pr := range r.store.returns {
		if pr.VendorProductID == vendorProductID && pr.Status == model.ReturnStatusPending {
			cp := *pr
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubReturnRepo) CreateTx(tx *gorm.DB, pr *model.ProductReturn) error {
	pr.ID = uuid.New()
	pr.ReturnDate = time.Now()
	cp := *pr
	r.store.returns = append(r.store.returns, &cp)
	return nil
}

func (r *stubReturnRepo) AddQtyTx(tx *gorm.DB, id uuid.UUID, qty int) error {
	for _, pr := range r.store.returns {
		if pr.ID == id {
			pr.ReturnQty += qty
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubReturnRepo) CreateCustomerReturnTx(tx *gorm.DB, cpr *model.CustomerProductReturn) error {
	cpr.ID = uuid.New()
	cp := *cpr
	r.store.customerReturns = append(r.store.customerReturns, &cp)
	return nil
}

func (r *stubReturnRepo) List(ctx context.Context, filter dto.ReturnFilter) ([]model.ProductReturn, int64, error) {
	var out []model.ProductReturn
	for _, pr := range r.store.returns {
		if filter.Status != 0 && pr.Status != filter.Status {
			continue
		}
		if filter.ReturnType != 0 && pr.ReturnType != filter.ReturnType {
			continue
		}
		out = append(out, *pr)
	}
	return out, int64(len(out)), nil
}

func (r *stubReturnRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductReturn, error) {
	for _, pr := range r.store.returns {
		if pr.ID == id {
			cp := *pr
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubReturnRepo) ResolveTx(tx *gorm.DB, id uuid.UUID, status model.ReturnStatus, resolutionType *int) error {
	for _, pr := range r.store.returns {
		if pr.ID == id {
			pr.Status = status
			if resolutionType != nil {
				pr.ResolutionType = resolutionType
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
