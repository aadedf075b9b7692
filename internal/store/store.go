// Package store is the authoritative in-memory state of the system. It
// backs every domain repository port with a single mutex-guarded
// dataset so cross-collection operations commit atomically, and it
// snapshots to JSON files so a restart resumes from the last save.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ironmart/ironmart/internal/accounting"
	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/auth"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/receiving"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/transfer"
)

// Store holds every collection behind one RWMutex. Writers go through
// withTx; readers take the read lock and return copies so callers can
// never alias live state.
type Store struct {
	mu sync.RWMutex

	products   map[string]ledger.Product
	sales      []pos.Sale
	expenses   map[string]accounting.Expense
	deliveries map[string]transfer.Delivery
	incoming   map[string]receiving.IncomingDelivery
	logs       []audit.Entry
	branches   map[string]settings.Branch
	users      map[string]auth.User
	config     settings.SystemConfig

	dirty bool
}

// New builds an empty store seeded with the given system configuration.
func New(cfg settings.SystemConfig) *Store {
	return &Store{
		products:   make(map[string]ledger.Product),
		expenses:   make(map[string]accounting.Expense),
		deliveries: make(map[string]transfer.Delivery),
		incoming:   make(map[string]receiving.IncomingDelivery),
		branches:   make(map[string]settings.Branch),
		users:      make(map[string]auth.User),
		config:     cfg,
	}
}

// Tx stages writes against the store while the write lock is held. The
// closure passed to withTx sees its own staged writes; nothing reaches
// the base dataset until the closure returns nil.
type Tx struct {
	store *Store

	products map[string]ledger.Product
	sales    []pos.Sale
	delivs   map[string]transfer.Delivery
	incoming map[string]receiving.IncomingDelivery
}

func (s *Store) withTx(ctx context.Context, fn func(*Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{
		store:    s,
		products: make(map[string]ledger.Product),
		delivs:   make(map[string]transfer.Delivery),
		incoming: make(map[string]receiving.IncomingDelivery),
	}
	if err := fn(tx); err != nil {
		return err
	}
	for id, p := range tx.products {
		p.Revision++
		s.products[id] = p
	}
	for _, sale := range tx.sales {
		s.sales = append([]pos.Sale{sale}, s.sales...)
	}
	for id, d := range tx.delivs {
		s.deliveries[id] = d
	}
	for id, d := range tx.incoming {
		s.incoming[id] = d
	}
	s.dirty = true
	return nil
}

// GetProductForUpdate returns the staged or committed product record.
func (tx *Tx) GetProductForUpdate(id string) (ledger.Product, error) {
	if p, ok := tx.products[id]; ok {
		return cloneProduct(p), nil
	}
	p, ok := tx.store.products[id]
	if !ok {
		return ledger.Product{}, ledger.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

// FindProductBySKUForUpdate locates a record by SKU at a location and
// branch, consulting staged writes first.
func (tx *Tx) FindProductBySKUForUpdate(sku string, location ledger.StockLocation, branchID string) (ledger.Product, error) {
	match := func(p ledger.Product) bool {
		return strings.EqualFold(p.SKU, sku) && p.Location == location && p.BranchID == branchID
	}
	for _, p := range tx.products {
		if match(p) {
			return cloneProduct(p), nil
		}
	}
	for id, p := range tx.store.products {
		if _, staged := tx.products[id]; staged {
			continue
		}
		if match(p) {
			return cloneProduct(p), nil
		}
	}
	return ledger.Product{}, ledger.ErrProductNotFound
}

// SaveProduct stages an updated product record.
func (tx *Tx) SaveProduct(p ledger.Product) error {
	if _, staged := tx.products[p.ID]; !staged {
		if _, ok := tx.store.products[p.ID]; !ok {
			return ledger.ErrProductNotFound
		}
	}
	tx.products[p.ID] = cloneProduct(p)
	return nil
}

// CreateProduct stages a new product record.
func (tx *Tx) CreateProduct(p ledger.Product) error {
	tx.products[p.ID] = cloneProduct(p)
	return nil
}

// AppendSale stages a committed sale.
func (tx *Tx) AppendSale(sale pos.Sale) error {
	tx.sales = append(tx.sales, cloneSale(sale))
	return nil
}

// GetDelivery returns the staged or committed delivery manifest.
func (tx *Tx) GetDelivery(id string) (transfer.Delivery, error) {
	if d, ok := tx.delivs[id]; ok {
		return cloneDelivery(d), nil
	}
	d, ok := tx.store.deliveries[id]
	if !ok {
		return transfer.Delivery{}, transfer.ErrDeliveryNotFound
	}
	return cloneDelivery(d), nil
}

// SaveDelivery stages a delivery manifest.
func (tx *Tx) SaveDelivery(d transfer.Delivery) error {
	tx.delivs[d.ID] = cloneDelivery(d)
	return nil
}

// GetIncoming returns the staged or committed incoming delivery.
func (tx *Tx) GetIncoming(id string) (receiving.IncomingDelivery, error) {
	if d, ok := tx.incoming[id]; ok {
		return cloneIncoming(d), nil
	}
	d, ok := tx.store.incoming[id]
	if !ok {
		return receiving.IncomingDelivery{}, receiving.ErrIncomingNotFound
	}
	return cloneIncoming(d), nil
}

// SaveIncoming stages an incoming delivery.
func (tx *Tx) SaveIncoming(d receiving.IncomingDelivery) error {
	tx.incoming[d.ID] = cloneIncoming(d)
	return nil
}

// --- shared reads ---

func (s *Store) getProduct(ctx context.Context, id string) (ledger.Product, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Product{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return ledger.Product{}, ledger.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (s *Store) listProducts(ctx context.Context, location ledger.StockLocation) ([]ledger.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Product, 0, len(s.products))
	for _, p := range s.products {
		if location != "" && p.Location != location {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) findProductByBarcode(ctx context.Context, barcode string, location ledger.StockLocation) (ledger.Product, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Product{}, err
	}
	if barcode == "" {
		return ledger.Product{}, ledger.ErrProductNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Barcode == barcode && (location == "" || p.Location == location) {
			return cloneProduct(p), nil
		}
	}
	return ledger.Product{}, ledger.ErrProductNotFound
}

func (s *Store) findProductBySKU(ctx context.Context, sku string, location ledger.StockLocation) (ledger.Product, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Product{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if strings.EqualFold(p.SKU, sku) && (location == "" || p.Location == location) {
			return cloneProduct(p), nil
		}
	}
	return ledger.Product{}, ledger.ErrProductNotFound
}

func (s *Store) listSales(ctx context.Context) ([]pos.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pos.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, cloneSale(sale))
	}
	return out, nil
}

func (s *Store) getSale(ctx context.Context, id string) (pos.Sale, error) {
	if err := ctx.Err(); err != nil {
		return pos.Sale{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sale := range s.sales {
		if sale.ID == id {
			return cloneSale(sale), nil
		}
	}
	return pos.Sale{}, pos.ErrSaleNotFound
}

// --- repository adapters ---

// Ledger returns the ledger-facing repository view.
func (s *Store) Ledger() LedgerRepo { return LedgerRepo{s} }

// POS returns the point-of-sale repository view.
func (s *Store) POS() POSRepo { return POSRepo{s} }

// Receiving returns the intake repository view.
func (s *Store) Receiving() ReceivingRepo { return ReceivingRepo{s} }

// Transfer returns the delivery repository view.
func (s *Store) Transfer() TransferRepo { return TransferRepo{s} }

// Audit returns the audit repository view.
func (s *Store) Audit() AuditRepo { return AuditRepo{s} }

// Settings returns the configuration repository view.
func (s *Store) Settings() SettingsRepo { return SettingsRepo{s} }

// Auth returns the user repository view.
func (s *Store) Auth() AuthRepo { return AuthRepo{s} }

// Accounting returns the accounting repository view.
func (s *Store) Accounting() AccountingRepo { return AccountingRepo{s} }

// LedgerRepo adapts the store to ledger.RepositoryPort.
type LedgerRepo struct{ s *Store }

func (r LedgerRepo) WithTx(ctx context.Context, fn func(context.Context, ledger.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *Tx) error { return fn(ctx, tx) })
}

func (r LedgerRepo) GetProduct(ctx context.Context, id string) (ledger.Product, error) {
	return r.s.getProduct(ctx, id)
}

func (r LedgerRepo) ListProducts(ctx context.Context, location ledger.StockLocation) ([]ledger.Product, error) {
	return r.s.listProducts(ctx, location)
}

func (r LedgerRepo) FindProductByBarcode(ctx context.Context, barcode string, location ledger.StockLocation) (ledger.Product, error) {
	return r.s.findProductByBarcode(ctx, barcode, location)
}

func (r LedgerRepo) FindProductBySKU(ctx context.Context, sku string, location ledger.StockLocation) (ledger.Product, error) {
	return r.s.findProductBySKU(ctx, sku, location)
}

// POSRepo adapts the store to pos.RepositoryPort.
type POSRepo struct{ s *Store }

func (r POSRepo) WithTx(ctx context.Context, fn func(context.Context, pos.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *Tx) error { return fn(ctx, tx) })
}

func (r POSRepo) ListSales(ctx context.Context) ([]pos.Sale, error) { return r.s.listSales(ctx) }

func (r POSRepo) GetSale(ctx context.Context, id string) (pos.Sale, error) {
	return r.s.getSale(ctx, id)
}

// ReceivingRepo adapts the store to receiving.RepositoryPort.
type ReceivingRepo struct{ s *Store }

func (r ReceivingRepo) WithTx(ctx context.Context, fn func(context.Context, receiving.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *Tx) error { return fn(ctx, tx) })
}

func (r ReceivingRepo) ListIncoming(ctx context.Context) ([]receiving.IncomingDelivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]receiving.IncomingDelivery, 0, len(r.s.incoming))
	for _, d := range r.s.incoming {
		out = append(out, cloneIncoming(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r ReceivingRepo) GetIncoming(ctx context.Context, id string) (receiving.IncomingDelivery, error) {
	if err := ctx.Err(); err != nil {
		return receiving.IncomingDelivery{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.incoming[id]
	if !ok {
		return receiving.IncomingDelivery{}, receiving.ErrIncomingNotFound
	}
	return cloneIncoming(d), nil
}

func (r ReceivingRepo) FindProductByBarcode(ctx context.Context, barcode string, location ledger.StockLocation) (ledger.Product, error) {
	return r.s.findProductByBarcode(ctx, barcode, location)
}

// TransferRepo adapts the store to transfer.RepositoryPort.
type TransferRepo struct{ s *Store }

func (r TransferRepo) WithTx(ctx context.Context, fn func(context.Context, transfer.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *Tx) error { return fn(ctx, tx) })
}

func (r TransferRepo) ListDeliveries(ctx context.Context, deliveryType transfer.DeliveryType) ([]transfer.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]transfer.Delivery, 0, len(r.s.deliveries))
	for _, d := range r.s.deliveries {
		if deliveryType != "" && d.Type != deliveryType {
			continue
		}
		out = append(out, cloneDelivery(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r TransferRepo) GetDelivery(ctx context.Context, id string) (transfer.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return transfer.Delivery{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.deliveries[id]
	if !ok {
		return transfer.Delivery{}, transfer.ErrDeliveryNotFound
	}
	return cloneDelivery(d), nil
}

func (r TransferRepo) GetSale(ctx context.Context, id string) (pos.Sale, error) {
	return r.s.getSale(ctx, id)
}

func (r TransferRepo) GetBranch(ctx context.Context, id string) (settings.Branch, error) {
	return r.s.Settings().GetBranch(ctx, id)
}

// AuditRepo adapts the store to audit.RepositoryPort. Entries are kept
// newest first and trimmed to the retention limit on append.
type AuditRepo struct{ s *Store }

func (r AuditRepo) AppendLog(ctx context.Context, entry audit.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs = append([]audit.Entry{entry}, r.s.logs...)
	if len(r.s.logs) > audit.RetentionLimit {
		r.s.logs = r.s.logs[:audit.RetentionLimit]
	}
	r.s.dirty = true
	return nil
}

func (r AuditRepo) ListLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]audit.Entry, 0, len(r.s.logs))
	for _, entry := range r.s.logs {
		if filter.Type != "" && entry.Type != filter.Type {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// SettingsRepo adapts the store to settings.RepositoryPort.
type SettingsRepo struct{ s *Store }

func (r SettingsRepo) SystemConfig(ctx context.Context) (settings.SystemConfig, error) {
	if err := ctx.Err(); err != nil {
		return settings.SystemConfig{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneConfig(r.s.config), nil
}

func (r SettingsRepo) SaveSystemConfig(ctx context.Context, cfg settings.SystemConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.config = cloneConfig(cfg)
	r.s.dirty = true
	return nil
}

func (r SettingsRepo) ListBranches(ctx context.Context) ([]settings.Branch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]settings.Branch, 0, len(r.s.branches))
	for _, b := range r.s.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r SettingsRepo) GetBranch(ctx context.Context, id string) (settings.Branch, error) {
	if err := ctx.Err(); err != nil {
		return settings.Branch{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.branches[id]
	if !ok {
		return settings.Branch{}, settings.ErrBranchNotFound
	}
	return b, nil
}

func (r SettingsRepo) SaveBranch(ctx context.Context, branch settings.Branch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.branches[branch.ID] = branch
	r.s.dirty = true
	return nil
}

func (r SettingsRepo) DeleteBranch(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.branches[id]; !ok {
		return settings.ErrBranchNotFound
	}
	delete(r.s.branches, id)
	r.s.dirty = true
	return nil
}

// AuthRepo adapts the store to auth.RepositoryPort.
type AuthRepo struct{ s *Store }

func (r AuthRepo) GetUser(ctx context.Context, id string) (auth.User, error) {
	if err := ctx.Err(); err != nil {
		return auth.User{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r AuthRepo) FindUserByUsername(ctx context.Context, username string) (auth.User, error) {
	if err := ctx.Err(); err != nil {
		return auth.User{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			return cloneUser(u), nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (r AuthRepo) ListUsers(ctx context.Context) ([]auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]auth.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r AuthRepo) SaveUser(ctx context.Context, user auth.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = cloneUser(user)
	r.s.dirty = true
	return nil
}

// AccountingRepo adapts the store to accounting.RepositoryPort.
type AccountingRepo struct{ s *Store }

func (r AccountingRepo) ListSales(ctx context.Context) ([]pos.Sale, error) {
	return r.s.listSales(ctx)
}

func (r AccountingRepo) ListExpenses(ctx context.Context) ([]accounting.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]accounting.Expense, 0, len(r.s.expenses))
	for _, e := range r.s.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r AccountingRepo) GetExpense(ctx context.Context, id string) (accounting.Expense, error) {
	if err := ctx.Err(); err != nil {
		return accounting.Expense{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.expenses[id]
	if !ok {
		return accounting.Expense{}, accounting.ErrExpenseNotFound
	}
	return e, nil
}

func (r AccountingRepo) SaveExpense(ctx context.Context, expense accounting.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.expenses[expense.ID] = expense
	r.s.dirty = true
	return nil
}

func (r AccountingRepo) DeleteExpense(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.expenses[id]; !ok {
		return accounting.ErrExpenseNotFound
	}
	delete(r.s.expenses, id)
	r.s.dirty = true
	return nil
}

func (r AccountingRepo) SystemConfig(ctx context.Context) (settings.SystemConfig, error) {
	return r.s.Settings().SystemConfig(ctx)
}

// --- copy helpers ---

func cloneProduct(p ledger.Product) ledger.Product {
	out := p
	out.History = append([]ledger.HistoryEntry(nil), p.History...)
	return out
}

func cloneSale(sale pos.Sale) pos.Sale {
	out := sale
	out.Items = append([]pos.SaleItem(nil), sale.Items...)
	return out
}

func cloneDelivery(d transfer.Delivery) transfer.Delivery {
	out := d
	out.Items = append([]pos.SaleItem(nil), d.Items...)
	out.Timeline = append([]transfer.TimelineEntry(nil), d.Timeline...)
	return out
}

func cloneIncoming(d receiving.IncomingDelivery) receiving.IncomingDelivery {
	out := d
	out.Items = append([]receiving.IncomingItem(nil), d.Items...)
	return out
}

func cloneUser(u auth.User) auth.User {
	out := u
	out.Permissions = append([]string(nil), u.Permissions...)
	return out
}

func cloneConfig(cfg settings.SystemConfig) settings.SystemConfig {
	out := cfg
	out.PaymentMethods = append([]string(nil), cfg.PaymentMethods...)
	return out
}
