package settings

import "errors"

// SystemConfig is the externally supplied runtime configuration the
// core reads: tax rate, thresholds, payment methods and currency.
type SystemConfig struct {
	StoreName         string   `json:"storeName" validate:"required"`
	Currency          string   `json:"currency" validate:"required,len=3"`
	LowStockThreshold int      `json:"lowStockThreshold" validate:"gte=0"`
	TaxRate           float64  `json:"taxRate" validate:"gte=0,lte=100"`
	PaymentMethods    []string `json:"paymentMethods" validate:"required,min=1,dive,required"`
}

// Branch is a physical store or warehouse site.
type Branch struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// BranchInput creates or renames a branch.
type BranchInput struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" validate:"omitempty,email"`
}

// ErrBranchNotFound indicates an unknown branch id.
var ErrBranchNotFound = errors.New("settings: branch not found")
