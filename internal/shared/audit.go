package shared

import "time"

// AuditLog represents a record stored in audit_logs. Accounting-cutoff
// changes are required to leave a trail; the row is written in the same
// transaction as the change it records.
type AuditLog struct {
	ActorID   int64
	CompanyID int64
	Action    string
	Entity    string
	EntityID  string
	Meta      map[string]any
	At        time.Time
}
