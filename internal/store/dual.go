package store

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Options configure the dual store.
type Options struct {
	// DataDir holds the CSV mirror and, when DatabaseURL is empty,
	// the SQLite database file.
	DataDir string

	// DatabaseURL selects the relational backend. Empty means SQLite
	// under DataDir; a postgres:// DSN means Postgres.
	DatabaseURL string

	// StartupRetries is the number of additional connection attempts
	// made at open time before failing.
	StartupRetries int

	// StartupRetryDelay is the fixed delay between attempts.
	StartupRetryDelay time.Duration
}

// DualStore implements Store with a CSV mirror plus a relational database.
// The database is the authority across restarts; the CSV files are the
// positional export format and the fallback record when a relational write
// fails mid-survey.
type DualStore struct {
	db  *database
	csv *csvMirror
	mu  sync.Mutex
}

var _ Store = (*DualStore)(nil)

// Open creates the CSV mirror, connects to the relational backend with
// bounded retries, and runs migrations.
func Open(opts Options) (*DualStore, error) {
	csv, err := newCSVMirror(opts.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := openDatabase(opts.DatabaseURL, opts.DataDir, opts.StartupRetries, opts.StartupRetryDelay)
	if err != nil {
		return nil, err
	}

	return &DualStore{db: db, csv: csv}, nil
}

// AppendPhase1 stamps each record with (userID, promptID), appends the batch
// to the CSV mirror, then inserts it into the database in one transaction.
func (s *DualStore) AppendPhase1(userID int64, promptID int, records []Phase1Record) error {
	if len(records) == 0 {
		log.Printf("Warning: no phase1 records to append for user %d", userID)
		return nil
	}

	stamped := make([]Phase1Record, len(records))
	copy(stamped, records)
	for i := range stamped {
		stamped[i].UserID = userID
		stamped[i].PromptID = promptID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	csvErr := s.csv.appendPhase1(stamped)
	dbErr := s.db.insertPhase1(stamped)

	switch {
	case csvErr == nil && dbErr == nil:
		log.Printf("Appended %d phase1 records for user %d, prompt %d", len(stamped), userID, promptID)
		return nil
	case csvErr == nil:
		return &PartialWriteError{Succeeded: "csv", Err: dbErr}
	case dbErr == nil:
		return &PartialWriteError{Succeeded: "database", Err: csvErr}
	default:
		return fmt.Errorf("failed to append phase1 records: %w", dbErr)
	}
}

// AppendPhase2 persists a user's final preference to both sides.
func (s *DualStore) AppendPhase2(userID int64, record Phase2Record) error {
	record.UserID = userID

	s.mu.Lock()
	defer s.mu.Unlock()

	csvErr := s.csv.appendPhase2(record)
	dbErr := s.db.insertPhase2(record)

	switch {
	case csvErr == nil && dbErr == nil:
		log.Printf("Appended phase2 record for user %d", userID)
		return nil
	case csvErr == nil:
		return &PartialWriteError{Succeeded: "csv", Err: dbErr}
	case dbErr == nil:
		return &PartialWriteError{Succeeded: "database", Err: csvErr}
	default:
		return fmt.Errorf("failed to append phase2 record: %w", dbErr)
	}
}

// HasCompletedPrompt queries the database, so the answer survives restarts.
func (s *DualStore) HasCompletedPrompt(userID int64, promptID int) (bool, error) {
	return s.db.hasCompletedPrompt(userID, promptID)
}

// HasCompletedSurvey queries the database for a phase-2 record with a
// non-empty completion timestamp.
func (s *DualStore) HasCompletedSurvey(userID int64) (bool, error) {
	return s.db.hasCompletedSurvey(userID)
}

// ListCompletedUsers returns the set of users who finished the survey.
func (s *DualStore) ListCompletedUsers() (map[int64]struct{}, error) {
	return s.db.listCompletedUsers()
}

// ReadAllPhase1 returns every phase-1 record in insertion order.
func (s *DualStore) ReadAllPhase1() ([]Phase1Record, error) {
	return s.db.readAllPhase1()
}

// ReadAllPhase2 returns every phase-2 record in insertion order.
func (s *DualStore) ReadAllPhase2() ([]Phase2Record, error) {
	return s.db.readAllPhase2()
}

// ResyncFromDatabase overwrites the CSV mirror from the database. Files are
// only rewritten when the database holds rows: an empty table must not
// clobber a CSV fallback that still carries unreconciled records.
func (s *DualStore) ResyncFromDatabase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase1, err := s.db.readAllPhase1()
	if err != nil {
		return err
	}
	if len(phase1) > 0 {
		if err := s.csv.overwritePhase1(phase1); err != nil {
			return err
		}
		log.Printf("Synced %d phase1 rows from database to CSV", len(phase1))
	}

	phase2, err := s.db.readAllPhase2()
	if err != nil {
		return err
	}
	if len(phase2) > 0 {
		if err := s.csv.overwritePhase2(phase2); err != nil {
			return err
		}
		log.Printf("Synced %d phase2 rows from database to CSV", len(phase2))
	}

	return nil
}

// MirrorToDatabase overwrites the database from the current CSV contents.
// Called after phase-2 finalization so reporting always sees a consistent
// relational store.
func (s *DualStore) MirrorToDatabase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase1, err := s.csv.readPhase1()
	if err != nil {
		return err
	}
	phase2, err := s.csv.readPhase2()
	if err != nil {
		return err
	}

	if err := s.db.replaceAll(phase1, phase2); err != nil {
		return err
	}
	log.Printf("Mirrored %d phase1 and %d phase2 rows from CSV to database", len(phase1), len(phase2))
	return nil
}

// Phase1CSVPath returns the phase-1 mirror file location.
func (s *DualStore) Phase1CSVPath() string { return s.csv.phase1Path }

// Phase2CSVPath returns the phase-2 mirror file location.
func (s *DualStore) Phase2CSVPath() string { return s.csv.phase2Path }

// Close closes the database connection.
func (s *DualStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
