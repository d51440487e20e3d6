package domain

import "time"

// StatementArchiver stores the CSV statement of a closed billing period
// durably. Archival is best-effort: a failed archive never blocks the roll.
type StatementArchiver interface {
	// ArchiveStatement stores the statement and returns the object key.
	ArchiveStatement(customerID int32, periodEnd time.Time, statement []byte) (string, error)
}
