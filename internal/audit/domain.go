package audit

import (
	"errors"
	"time"
)

// LogType enumerates auditable event categories.
type LogType string

const (
	TypeScan         LogType = "SCAN"
	TypeUpdate       LogType = "UPDATE"
	TypeCreate       LogType = "CREATE"
	TypeDelete       LogType = "DELETE"
	TypeLogin        LogType = "LOGIN"
	TypeTransaction  LogType = "TRANSACTION"
	TypeInventoryAdj LogType = "INVENTORY_ADJ"
	TypePayroll      LogType = "PAYROLL"
	TypeTransfer     LogType = "TRANSFER"
	TypeEmployee     LogType = "EMPLOYEE"
	TypeSystem       LogType = "SYSTEM"
	TypeProfile      LogType = "PROFILE"
	TypeBranch       LogType = "BRANCH"
)

// Severity grades an audit entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityDanger  Severity = "danger"
)

// RetentionLimit caps the number of retained entries, newest first.
const RetentionLimit = 500

// Entry is one immutable audit record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Type      LogType   `json:"type"`
	Target    string    `json:"target"`
	Details   string    `json:"details"`
	Severity  Severity  `json:"severity"`
}

// Filter narrows List results.
type Filter struct {
	Type  LogType
	Limit int
}

// ErrEntryRequired indicates a record missing its mandatory fields.
var ErrEntryRequired = errors.New("audit: type and target required")
