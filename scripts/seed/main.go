// Command seed writes a demo snapshot so a fresh checkout has an admin
// account, a branch and a few products to poke at.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/auth"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/shared"
	"github.com/ironmart/ironmart/internal/store"
)

func main() {
	dataDir := getenv("DATA_DIR", "./data")
	ctx := shared.ContextWithActor(context.Background(), shared.Actor{ID: "seed", Name: "Seeder"})

	st := store.New(settings.SystemConfig{
		StoreName:         "IronMart Hardware",
		Currency:          "USD",
		LowStockThreshold: 10,
		TaxRate:           15,
		PaymentMethods:    []string{"Cash", "Card", "Bank Transfer"},
	})
	if err := st.Load(dataDir); err != nil {
		log.Fatalf("load snapshot: %v", err)
	}

	auditService := audit.NewService(st.Audit())
	settingsService := settings.NewService(st.Settings(), auditService)
	authService := auth.NewService(st.Auth(), auditService)
	ledgerService := ledger.NewService(st.Ledger(), auditService, nil)

	fmt.Println("→ Seeding admin account...")
	if _, err := authService.CreateUser(ctx, auth.CreateUserInput{
		Name: "Site Admin", Username: "admin", Password: "changeme123",
		Role: auth.RoleAdmin, Salary: 0,
	}); err != nil && err != auth.ErrUsernameTaken {
		log.Fatalf("seed admin: %v", err)
	}

	fmt.Println("→ Seeding branch...")
	branches, err := settingsService.Branches(ctx)
	if err != nil {
		log.Fatalf("list branches: %v", err)
	}
	if len(branches) == 0 {
		if _, err := settingsService.CreateBranch(ctx, settings.BranchInput{Name: "Main Street"}); err != nil {
			log.Fatalf("seed branch: %v", err)
		}
	}

	fmt.Println("→ Seeding products...")
	existing, err := ledgerService.List(ctx, "")
	if err != nil {
		log.Fatalf("list products: %v", err)
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.SKU] = true
	}
	seedProducts := []ledger.RegisterInput{
		{Name: "Claw Hammer", Category: "Tools", Price: 19.99, Cost: 11.00, InitialStock: 24, SKU: "HAM-001", Barcode: "4006381333931", BoxQuantity: 12, Location: ledger.LocationShop},
		{Name: "Cordless Drill", Category: "Power Tools", Price: 129.00, Cost: 82.00, InitialStock: 8, SKU: "DRL-014", Barcode: "5901234123457", BoxQuantity: 1, Location: ledger.LocationShop},
		{Name: "Wood Screws 4x40", Category: "Fasteners", Price: 6.50, Cost: 2.80, InitialStock: 400, SKU: "SCR-440", Barcode: "7350053850019", BoxQuantity: 100, Location: ledger.LocationWarehouse},
		{Name: "PVC Pipe 2in", Category: "Plumbing", Price: 9.75, Cost: 5.10, InitialStock: 60, SKU: "PVC-200", BoxQuantity: 10, Location: ledger.LocationWarehouse},
	}
	for _, input := range seedProducts {
		if known[input.SKU] {
			continue
		}
		if _, err := ledgerService.Register(ctx, input); err != nil {
			log.Fatalf("seed product %s: %v", input.SKU, err)
		}
	}

	if err := st.Save(dataDir); err != nil {
		log.Fatalf("save snapshot: %v", err)
	}
	fmt.Printf("Seed complete, snapshot written to %s\n", dataDir)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
