/*
Package store implements the durable progress store for survey responses.

Responses are dual-written: a CSV mirror under the data directory for
positional consumers, and a relational database (SQLite by default, Postgres
when a DSN is configured) that is the authority across process restarts.
The two sides may diverge transiently on partial write failures; they are
reconciled only by the explicit full resync/mirror operations, never by
incremental repair.
*/
package store

import "fmt"

// Store defines the progress store contract used by the survey engine
// and by reporting.
type Store interface {
	// AppendPhase1 durably persists all records tagged with (userID, promptID).
	// The CSV side is written all-or-nothing per call and the relational
	// insert runs in one transaction. A partial failure (one side succeeded)
	// is returned as an error; the succeeded side is not rolled back.
	AppendPhase1(userID int64, promptID int, records []Phase1Record) error

	// AppendPhase2 durably persists a user's final preference.
	AppendPhase2(userID int64, record Phase2Record) error

	// HasCompletedPrompt reports whether at least one phase-1 record exists
	// for (userID, promptID). Backed by the relational store so it survives
	// process restarts.
	HasCompletedPrompt(userID int64, promptID int) (bool, error)

	// HasCompletedSurvey reports whether a phase-2 record with a non-empty
	// completion timestamp exists for the user.
	HasCompletedSurvey(userID int64) (bool, error)

	// ListCompletedUsers returns the set of users with a phase-2 record.
	ListCompletedUsers() (map[int64]struct{}, error)

	// ReadAllPhase1 returns every phase-1 record in insertion order.
	// Full scan; used only by reporting.
	ReadAllPhase1() ([]Phase1Record, error)

	// ReadAllPhase2 returns every phase-2 record in insertion order.
	ReadAllPhase2() ([]Phase2Record, error)

	// ResyncFromDatabase overwrites the CSV mirror from the relational
	// store. Run at process start; the database is the authority.
	ResyncFromDatabase() error

	// MirrorToDatabase overwrites the relational store from the current
	// CSV contents. Run after phase-2 completion to guarantee consistency
	// before reporting.
	MirrorToDatabase() error

	// Phase1CSVPath and Phase2CSVPath expose the mirror file locations
	// for export commands.
	Phase1CSVPath() string
	Phase2CSVPath() string

	// Close releases the database connection.
	Close() error
}

// RowFormatError reports a CSV row whose field count does not match the
// fixed header set.
type RowFormatError struct {
	Expected int
	Got      int
}

func (e *RowFormatError) Error() string {
	return fmt.Sprintf("row has %d fields, expected %d", e.Got, e.Expected)
}

// PartialWriteError reports a dual write where one side succeeded and the
// other failed. The stores diverge until the next full resync or mirror.
type PartialWriteError struct {
	Succeeded string // "csv" or "database"
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %s side persisted but the other failed: %v", e.Succeeded, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
