package testutil

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ledazaf/ms-order-api/internal/data/aggregates"
	"github.com/ledazaf/ms-order-api/internal/data/repos"
	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/pkg/dbctx"
)

var (
	_ repos.CategoryRepo    = CategoryRepoView{}
	_ repos.ProductRepo     = ProductRepoView{}
	_ repos.OrderRepo       = OrderRepoView{}
	_ repos.OrderItemRepo   = OrderItemRepoView{}
	_ aggregates.StockGuard = (*FakeStore)(nil)
)

// FakeStore is an in-memory stand-in for the catalog and order repos plus the
// stock guard. It has no transaction semantics: tests that need rollback
// behavior assert through InjectedTxRunner or run against a real database.
type FakeStore struct {
	mu sync.Mutex

	Categories map[int64]types.Category
	Products   map[int64]types.Product
	Orders     map[int64]types.Order
	Items      map[int64]types.OrderItem

	nextCategoryID int64
	nextProductID  int64
	nextOrderID    int64
	nextItemID     int64

	// ForcedCASLosses makes the next N stock reservations lose their race:
	// the product version is bumped as if another writer won.
	ForcedCASLosses int
	// ReserveCalls counts stock reservation attempts.
	ReserveCalls int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		Categories: map[int64]types.Category{},
		Products:   map[int64]types.Product{},
		Orders:     map[int64]types.Order{},
		Items:      map[int64]types.OrderItem{},
	}
}

// SeedCategory inserts a category and returns its id.
func (s *FakeStore) SeedCategory(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCategoryID++
	s.Categories[s.nextCategoryID] = types.Category{ID: s.nextCategoryID, Name: name}
	return s.nextCategoryID
}

// SeedProduct inserts a product and returns its id.
func (s *FakeStore) SeedProduct(categoryID int64, name string, price decimal.Decimal, stock int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	s.Products[s.nextProductID] = types.Product{
		ID:         s.nextProductID,
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: categoryID,
	}
	return s.nextProductID
}

// SeedOrder inserts an order with the given status and returns its id.
func (s *FakeStore) SeedOrder(status types.OrderStatus) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrderID++
	s.Orders[s.nextOrderID] = types.Order{ID: s.nextOrderID, Status: status}
	return s.nextOrderID
}

// --- CategoryRepo ---

func (s *FakeStore) Create(dbc dbctx.Context, rows []*types.Category) ([]*types.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == 0 {
			s.nextCategoryID++
			r.ID = s.nextCategoryID
		}
		s.Categories[r.ID] = *r
	}
	return rows, nil
}

func (s *FakeStore) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Category
	for _, id := range ids {
		if c, ok := s.Categories[id]; ok {
			cc := c
			out = append(out, &cc)
		}
	}
	return out, nil
}

func (s *FakeStore) GetByID(dbc dbctx.Context, id int64) (*types.Category, error) {
	rows, _ := s.GetByIDs(dbc, []int64{id})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *FakeStore) GetWithProducts(dbc dbctx.Context, id int64) (*types.Category, error) {
	c, _ := s.GetByID(dbc, id)
	if c == nil {
		return nil, nil
	}
	products, _ := s.ListByCategory(dbc, id)
	for _, p := range products {
		c.Products = append(c.Products, *p)
	}
	return c, nil
}

func (s *FakeStore) List(dbc dbctx.Context) ([]*types.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Category
	for _, c := range s.Categories {
		cc := c
		out = append(out, &cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FakeStore) LockByID(dbc dbctx.Context, id int64) (*types.Category, error) {
	return s.GetByID(dbc, id)
}

func (s *FakeStore) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Categories[id]
	if !ok {
		return nil
	}
	if v, ok := updates["name_category"]; ok {
		c.Name = v.(string)
	}
	s.Categories[id] = c
	return nil
}

func (s *FakeStore) Delete(dbc dbctx.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Categories, id)
	return nil
}

// CategoryRepoView narrows the store to the CategoryRepo method set; the
// embedding keeps method-name collisions with the other repo facets apart.
type CategoryRepoView struct{ *FakeStore }
type ProductRepoView struct{ *FakeStore }
type OrderRepoView struct{ *FakeStore }
type OrderItemRepoView struct{ *FakeStore }

// --- ProductRepo (via ProductRepoView) ---

func (v ProductRepoView) Create(dbc dbctx.Context, rows []*types.Product) ([]*types.Product, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == 0 {
			s.nextProductID++
			r.ID = s.nextProductID
		}
		s.Products[r.ID] = *r
	}
	return rows, nil
}

func (v ProductRepoView) Upsert(dbc dbctx.Context, row *types.Product) error {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	if row.ID == 0 {
		s.nextProductID++
		row.ID = s.nextProductID
	}
	s.Products[row.ID] = *row
	return nil
}

func (v ProductRepoView) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Product, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Product
	for _, id := range ids {
		if p, ok := s.Products[id]; ok {
			pp := p
			out = append(out, &pp)
		}
	}
	return out, nil
}

func (v ProductRepoView) GetByID(dbc dbctx.Context, id int64) (*types.Product, error) {
	rows, _ := v.GetByIDs(dbc, []int64{id})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (v ProductRepoView) List(dbc dbctx.Context) ([]*types.Product, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Product
	for _, p := range s.Products {
		pp := p
		out = append(out, &pp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v ProductRepoView) ListByCategory(dbc dbctx.Context, categoryID int64) ([]*types.Product, error) {
	return v.FakeStore.ListByCategory(dbc, categoryID)
}

func (s *FakeStore) ListByCategory(dbc dbctx.Context, categoryID int64) ([]*types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Product
	for _, p := range s.Products {
		if p.CategoryID == categoryID {
			pp := p
			out = append(out, &pp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v ProductRepoView) CountByCategory(dbc dbctx.Context, categoryID int64) (int64, error) {
	rows, _ := v.FakeStore.ListByCategory(dbc, categoryID)
	return int64(len(rows)), nil
}

func (v ProductRepoView) LockByID(dbc dbctx.Context, id int64) (*types.Product, error) {
	return v.GetByID(dbc, id)
}

func (v ProductRepoView) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Products[id]
	if !ok {
		return nil
	}
	if val, ok := updates["name_product"]; ok {
		p.Name = val.(string)
	}
	if val, ok := updates["price"]; ok {
		p.Price = val.(decimal.Decimal)
	}
	if val, ok := updates["description_producto"]; ok {
		p.Description = val.(string)
	}
	if val, ok := updates["stock_product"]; ok {
		p.Stock = val.(int)
	}
	if _, ok := updates["version"]; ok {
		// The real repo sends gorm.Expr("version + 1"); the fake just bumps.
		p.Version++
	}
	s.Products[id] = p
	return nil
}

func (v ProductRepoView) RestoreStock(dbc dbctx.Context, id int64, quantity int) error {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Products[id]
	if !ok {
		return nil
	}
	p.Stock += quantity
	p.Version++
	s.Products[id] = p
	return nil
}

func (v ProductRepoView) Delete(dbc dbctx.Context, id int64) error {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Products, id)
	return nil
}

func (v ProductRepoView) DeleteByCategory(dbc dbctx.Context, categoryID int64) (int64, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, p := range s.Products {
		if p.CategoryID == categoryID {
			delete(s.Products, id)
			removed++
		}
	}
	return removed, nil
}

// --- OrderRepo (via OrderRepoView) ---

func (v OrderRepoView) Create(dbc dbctx.Context, rows []*types.Order) ([]*types.Order, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == 0 {
			s.nextOrderID++
			r.ID = s.nextOrderID
		}
		if r.Status == "" {
			r.Status = types.OrderStatusPending
		}
		s.Orders[r.ID] = *r
	}
	return rows, nil
}

func (v OrderRepoView) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Order, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Order
	for _, id := range ids {
		if o, ok := s.Orders[id]; ok {
			oo := o
			out = append(out, &oo)
		}
	}
	return out, nil
}

func (v OrderRepoView) GetByID(dbc dbctx.Context, id int64) (*types.Order, error) {
	rows, _ := v.GetByIDs(dbc, []int64{id})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (v OrderRepoView) GetWithItems(dbc dbctx.Context, id int64) (*types.Order, error) {
	o, _ := v.GetByID(dbc, id)
	if o == nil {
		return nil, nil
	}
	items, _ := OrderItemRepoView{v.FakeStore}.ListByOrder(dbc, id)
	for _, it := range items {
		o.Items = append(o.Items, *it)
	}
	return o, nil
}

func (v OrderRepoView) List(dbc dbctx.Context) ([]*types.Order, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Order
	for _, o := range s.Orders {
		oo := o
		out = append(out, &oo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v OrderRepoView) ListByStatus(dbc dbctx.Context, statuses []types.OrderStatus) ([]*types.Order, error) {
	all, _ := v.List(dbc)
	var out []*types.Order
	for _, o := range all {
		for _, st := range statuses {
			if o.Status == st {
				out = append(out, o)
				break
			}
		}
	}
	return out, nil
}

func (v OrderRepoView) LockByID(dbc dbctx.Context, id int64) (*types.Order, error) {
	return v.GetByID(dbc, id)
}

func (v OrderRepoView) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return nil
	}
	if val, ok := updates["status"]; ok {
		o.Status = val.(types.OrderStatus)
	}
	if val, ok := updates["subtotal"]; ok {
		o.Subtotal = val.(decimal.Decimal)
	}
	if val, ok := updates["igv"]; ok {
		o.IGV = val.(decimal.Decimal)
	}
	if val, ok := updates["total"]; ok {
		o.Total = val.(decimal.Decimal)
	}
	s.Orders[id] = o
	return nil
}

func (v OrderRepoView) Delete(dbc dbctx.Context, id int64) error {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Orders, id)
	return nil
}

// --- OrderItemRepo (via OrderItemRepoView) ---

func (v OrderItemRepoView) Create(dbc dbctx.Context, rows []*types.OrderItem) ([]*types.OrderItem, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == 0 {
			s.nextItemID++
			r.ID = s.nextItemID
		}
		s.Items[r.ID] = *r
	}
	return rows, nil
}

func (v OrderItemRepoView) GetByID(dbc dbctx.Context, id int64) (*types.OrderItem, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.Items[id]; ok {
		ii := it
		return &ii, nil
	}
	return nil, nil
}

func (v OrderItemRepoView) GetByOrderAndID(dbc dbctx.Context, orderID, itemID int64) (*types.OrderItem, error) {
	it, _ := v.GetByID(dbc, itemID)
	if it == nil || it.OrderID != orderID {
		return nil, nil
	}
	return it, nil
}

func (v OrderItemRepoView) ListByOrder(dbc dbctx.Context, orderID int64) ([]*types.OrderItem, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.OrderItem
	for _, it := range s.Items {
		if it.OrderID == orderID {
			ii := it
			out = append(out, &ii)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v OrderItemRepoView) CountByProduct(dbc dbctx.Context, productID int64) (int64, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, it := range s.Items {
		if it.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (v OrderItemRepoView) Delete(dbc dbctx.Context, id int64) error {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Items, id)
	return nil
}

func (v OrderItemRepoView) DeleteByOrder(dbc dbctx.Context, orderID int64) (int64, error) {
	s := v.FakeStore
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, it := range s.Items {
		if it.OrderID == orderID {
			delete(s.Items, id)
			removed++
		}
	}
	return removed, nil
}

// --- StockGuard ---

func (s *FakeStore) ReserveStockByVersion(dbc dbctx.Context, productID int64, expectedVersion, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReserveCalls++
	p, ok := s.Products[productID]
	if !ok {
		return false, nil
	}
	if s.ForcedCASLosses > 0 {
		s.ForcedCASLosses--
		p.Version++
		s.Products[productID] = p
		return false, nil
	}
	if p.Version != expectedVersion || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	p.Version++
	s.Products[productID] = p
	return true, nil
}
