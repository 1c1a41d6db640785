package store

import (
	"encoding/csv"
	"os"
	"testing"
	"time"
)

func openTestStore(t *testing.T, dataDir string) *DualStore {
	t.Helper()
	s, err := Open(Options{DataDir: dataDir, StartupRetryDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePhase1(userID int64, promptID int, category, label, model string) Phase1Record {
	return Phase1Record{
		UserID:            userID,
		EvaluatedAt:       time.Now().UTC().Truncate(time.Second),
		Category:          category,
		PromptID:          promptID,
		AnonymousLabel:    label,
		ActualModel:       model,
		Naturalness:       5,
		Clarity:           4,
		EmotionalTone:     3,
		OverallPreference: 4,
	}
}

// TestOpenInitializesCSVHeaders verifies both mirror files get their headers.
func TestOpenInitializesCSVHeaders(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	for _, path := range []string{s.Phase1CSVPath(), s.Phase2CSVPath()} {
		file, err := os.Open(path)
		if err != nil {
			t.Fatalf("Mirror file missing: %v", err)
		}
		rows, err := csv.NewReader(file).ReadAll()
		file.Close()
		if err != nil {
			t.Fatalf("Failed to read %s: %v", path, err)
		}
		if len(rows) != 1 {
			t.Fatalf("Expected header-only file, got %d rows", len(rows))
		}
	}

	file, _ := os.Open(s.Phase1CSVPath())
	rows, _ := csv.NewReader(file).ReadAll()
	file.Close()
	for i, col := range Phase1Headers {
		if rows[0][i] != col {
			t.Errorf("Phase1 header %d = %q, want %q", i, rows[0][i], col)
		}
	}
}

// TestAppendPhase1AndCompletion verifies prompt completion flips on a write
// and survives a process restart (store reopen).
func TestAppendPhase1AndCompletion(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	done, err := s.HasCompletedPrompt(7, 1)
	if err != nil {
		t.Fatalf("HasCompletedPrompt failed: %v", err)
	}
	if done {
		t.Error("Expected prompt 1 incomplete before any write")
	}

	records := []Phase1Record{
		samplePhase1(0, 0, "News", "A", "ModelOne"),
		samplePhase1(0, 0, "News", "B", "ModelTwo"),
	}
	if err := s.AppendPhase1(7, 1, records); err != nil {
		t.Fatalf("AppendPhase1 failed: %v", err)
	}

	done, err = s.HasCompletedPrompt(7, 1)
	if err != nil {
		t.Fatalf("HasCompletedPrompt failed: %v", err)
	}
	if !done {
		t.Error("Expected prompt 1 complete after write")
	}

	if done, _ := s.HasCompletedPrompt(7, 2); done {
		t.Error("Prompt 2 should remain incomplete")
	}
	if done, _ := s.HasCompletedPrompt(8, 1); done {
		t.Error("Other users should remain incomplete")
	}

	// Reopen: completion is database-backed, not session-backed.
	s.Close()
	s2 := openTestStore(t, dir)
	done, err = s2.HasCompletedPrompt(7, 1)
	if err != nil {
		t.Fatalf("HasCompletedPrompt after reopen failed: %v", err)
	}
	if !done {
		t.Error("Completion lost across reopen")
	}

	all, err := s2.ReadAllPhase1()
	if err != nil {
		t.Fatalf("ReadAllPhase1 failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(all))
	}
	if all[0].UserID != 7 || all[0].PromptID != 1 {
		t.Errorf("Records not stamped with user/prompt: %+v", all[0])
	}
}

// TestAppendPhase2AndSurveyCompletion verifies the phase-2 completion rule.
func TestAppendPhase2AndSurveyCompletion(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	if done, _ := s.HasCompletedSurvey(9); done {
		t.Error("Expected survey incomplete before phase2 write")
	}

	record := Phase2Record{
		PreferredLabel: "B",
		PreferredModel: "ModelTwo",
		Comment:        "good",
		CompletedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := s.AppendPhase2(9, record); err != nil {
		t.Fatalf("AppendPhase2 failed: %v", err)
	}

	done, err := s.HasCompletedSurvey(9)
	if err != nil {
		t.Fatalf("HasCompletedSurvey failed: %v", err)
	}
	if !done {
		t.Error("Expected survey complete after phase2 write")
	}

	users, err := s.ListCompletedUsers()
	if err != nil {
		t.Fatalf("ListCompletedUsers failed: %v", err)
	}
	if _, ok := users[9]; !ok || len(users) != 1 {
		t.Errorf("Expected exactly user 9 completed, got %v", users)
	}

	all, err := s.ReadAllPhase2()
	if err != nil {
		t.Fatalf("ReadAllPhase2 failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(all))
	}
	if all[0].PreferredLabel != "B" || all[0].PreferredModel != "ModelTwo" || all[0].Comment != "good" {
		t.Errorf("Phase2 record not round-tripped: %+v", all[0])
	}
}

// TestResyncFromDatabase verifies the database rebuilds a lost CSV mirror.
func TestResyncFromDatabase(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)

	if err := s.AppendPhase1(3, 2, []Phase1Record{samplePhase1(0, 0, "Lit", "C", "ModelThree")}); err != nil {
		t.Fatalf("AppendPhase1 failed: %v", err)
	}

	// Simulate a fresh container: mirror file wiped, database intact.
	if err := os.Remove(s.Phase1CSVPath()); err != nil {
		t.Fatal(err)
	}

	if err := s.ResyncFromDatabase(); err != nil {
		t.Fatalf("ResyncFromDatabase failed: %v", err)
	}

	records, err := s.csv.readPhase1()
	if err != nil {
		t.Fatalf("readPhase1 failed: %v", err)
	}
	if len(records) != 1 || records[0].UserID != 3 || records[0].PromptID != 2 {
		t.Errorf("Mirror not rebuilt from database: %+v", records)
	}
}

// TestResyncKeepsCSVWhenDatabaseEmpty verifies an empty database does not
// clobber a CSV fallback that still holds rows.
func TestResyncKeepsCSVWhenDatabaseEmpty(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	if err := s.csv.appendPhase1([]Phase1Record{samplePhase1(5, 1, "News", "A", "ModelOne")}); err != nil {
		t.Fatalf("csv append failed: %v", err)
	}

	if err := s.ResyncFromDatabase(); err != nil {
		t.Fatalf("ResyncFromDatabase failed: %v", err)
	}

	records, err := s.csv.readPhase1()
	if err != nil {
		t.Fatalf("readPhase1 failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("CSV fallback rows were dropped, got %d rows", len(records))
	}
}

// TestMirrorToDatabase verifies CSV contents overwrite the database.
func TestMirrorToDatabase(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	// Row present only in the CSV (as after a failed relational write).
	if err := s.csv.appendPhase1([]Phase1Record{samplePhase1(4, 3, "Technical", "D", "ModelFour")}); err != nil {
		t.Fatalf("csv append failed: %v", err)
	}
	if err := s.csv.appendPhase2(Phase2Record{
		UserID: 4, PreferredLabel: "D", PreferredModel: "ModelFour",
		CompletedAt: time.Now().UTC().Truncate(time.Second),
	}); err != nil {
		t.Fatalf("csv append failed: %v", err)
	}

	if err := s.MirrorToDatabase(); err != nil {
		t.Fatalf("MirrorToDatabase failed: %v", err)
	}

	phase1, err := s.ReadAllPhase1()
	if err != nil {
		t.Fatalf("ReadAllPhase1 failed: %v", err)
	}
	if len(phase1) != 1 || phase1[0].UserID != 4 || phase1[0].PromptID != 3 {
		t.Errorf("Database not rebuilt from CSV: %+v", phase1)
	}

	if done, _ := s.HasCompletedSurvey(4); !done {
		t.Error("Phase2 row not mirrored to database")
	}
}

// TestPhase1RowRoundTrip verifies the fixed positional encoding.
func TestPhase1RowRoundTrip(t *testing.T) {
	r := samplePhase1(11, 2, "News", "E", "ModelFive")

	row := r.row()
	if len(row) != len(Phase1Headers) {
		t.Fatalf("Row has %d fields, want %d", len(row), len(Phase1Headers))
	}
	if row[0] != "11" || row[3] != "2" || row[4] != "E" {
		t.Errorf("Row fields out of positional order: %v", row)
	}

	parsed, err := phase1FromRow(row)
	if err != nil {
		t.Fatalf("phase1FromRow failed: %v", err)
	}
	if parsed.UserID != r.UserID || parsed.PromptID != r.PromptID ||
		parsed.AnonymousLabel != r.AnonymousLabel || parsed.ActualModel != r.ActualModel ||
		parsed.OverallPreference != r.OverallPreference || !parsed.EvaluatedAt.Equal(r.EvaluatedAt) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", parsed, r)
	}
}

// TestRowFormatError verifies short rows are rejected with the typed error.
func TestRowFormatError(t *testing.T) {
	_, err := phase1FromRow([]string{"1", "2"})
	if err == nil {
		t.Fatal("Expected error for short row")
	}
	if _, ok := err.(*RowFormatError); !ok {
		t.Errorf("Expected *RowFormatError, got %T", err)
	}
}
