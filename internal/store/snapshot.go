package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironmart/ironmart/internal/accounting"
	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/auth"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/receiving"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/transfer"
)

const snapshotFile = "snapshot.json"

// storedUser carries the bcrypt hash that the public User shape
// deliberately drops from its JSON encoding.
type storedUser struct {
	auth.User
	PasswordHash string `json:"passwordHash"`
}

// snapshot is the on-disk shape of the whole dataset. Written as one
// document so a restore is internally consistent.
type snapshot struct {
	Products   []ledger.Product             `json:"products"`
	Sales      []pos.Sale                   `json:"sales"`
	Expenses   []accounting.Expense         `json:"expenses"`
	Deliveries []transfer.Delivery          `json:"deliveries"`
	Incoming   []receiving.IncomingDelivery `json:"incoming"`
	Logs       []audit.Entry                `json:"logs"`
	Branches   []settings.Branch            `json:"branches"`
	Users      []storedUser                 `json:"users"`
	Config     settings.SystemConfig        `json:"config"`
}

// Save writes the full dataset to dir atomically via rename. A clean
// store is skipped so the periodic saver stays cheap.
func (s *Store) Save(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	snap := snapshot{
		Sales:  append([]pos.Sale(nil), s.sales...),
		Logs:   append([]audit.Entry(nil), s.logs...),
		Config: cloneConfig(s.config),
	}
	for _, p := range s.products {
		snap.Products = append(snap.Products, cloneProduct(p))
	}
	for _, e := range s.expenses {
		snap.Expenses = append(snap.Expenses, e)
	}
	for _, d := range s.deliveries {
		snap.Deliveries = append(snap.Deliveries, cloneDelivery(d))
	}
	for _, d := range s.incoming {
		snap.Incoming = append(snap.Incoming, cloneIncoming(d))
	}
	for _, b := range s.branches {
		snap.Branches = append(snap.Branches, b)
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, storedUser{User: cloneUser(u), PasswordHash: u.PasswordHash})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create data dir: %w", err)
	}
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	tmp := filepath.Join(dir, snapshotFile+".tmp")
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("store: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, snapshotFile)); err != nil {
		return fmt.Errorf("store: publish snapshot: %w", err)
	}
	s.dirty = false
	return nil
}

// Load replaces the dataset with the snapshot in dir. A missing file is
// not an error; the store keeps its seeded state.
func (s *Store) Load(dir string) error {
	payload, err := os.ReadFile(filepath.Join(dir, snapshotFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("store: decode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[string]ledger.Product, len(snap.Products))
	for _, p := range snap.Products {
		s.products[p.ID] = p
	}
	s.sales = snap.Sales
	s.expenses = make(map[string]accounting.Expense, len(snap.Expenses))
	for _, e := range snap.Expenses {
		s.expenses[e.ID] = e
	}
	s.deliveries = make(map[string]transfer.Delivery, len(snap.Deliveries))
	for _, d := range snap.Deliveries {
		s.deliveries[d.ID] = d
	}
	s.incoming = make(map[string]receiving.IncomingDelivery, len(snap.Incoming))
	for _, d := range snap.Incoming {
		s.incoming[d.ID] = d
	}
	s.logs = snap.Logs
	if len(s.logs) > audit.RetentionLimit {
		s.logs = s.logs[:audit.RetentionLimit]
	}
	s.branches = make(map[string]settings.Branch, len(snap.Branches))
	for _, b := range snap.Branches {
		s.branches[b.ID] = b
	}
	s.users = make(map[string]auth.User, len(snap.Users))
	for _, u := range snap.Users {
		user := u.User
		user.PasswordHash = u.PasswordHash
		s.users[user.ID] = user
	}
	if snap.Config.StoreName != "" {
		s.config = snap.Config
	}
	s.dirty = false
	return nil
}
