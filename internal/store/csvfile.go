package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// csvMirror maintains the flat-file representation of both result sets.
// Appends are all-or-nothing per call: rows are encoded into a buffer first
// and written with a single O_APPEND write under an exclusive flock.
type csvMirror struct {
	phase1Path string
	phase2Path string
}

// newCSVMirror creates the mirror under dataDir and initializes both files
// with their headers if they are missing or empty.
func newCSVMirror(dataDir string) (*csvMirror, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	m := &csvMirror{
		phase1Path: filepath.Join(dataDir, "phase1_results.csv"),
		phase2Path: filepath.Join(dataDir, "phase2_results.csv"),
	}

	for _, f := range []struct {
		path    string
		headers []string
	}{
		{m.phase1Path, Phase1Headers},
		{m.phase2Path, Phase2Headers},
	} {
		info, err := os.Stat(f.path)
		if err == nil && info.Size() > 0 {
			continue
		}
		if err := writeCSVFile(f.path, f.headers, nil); err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", filepath.Base(f.path), err)
		}
		log.Printf("Initialized CSV file: %s", f.path)
	}

	return m, nil
}

// appendPhase1 appends records to the phase-1 file in one write.
func (m *csvMirror) appendPhase1(records []Phase1Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.row())
	}
	return appendRows(m.phase1Path, rows)
}

// appendPhase2 appends a single record to the phase-2 file.
func (m *csvMirror) appendPhase2(record Phase2Record) error {
	return appendRows(m.phase2Path, [][]string{record.row()})
}

// readPhase1 parses the phase-1 file, skipping the header row.
func (m *csvMirror) readPhase1() ([]Phase1Record, error) {
	rows, err := readRows(m.phase1Path)
	if err != nil {
		return nil, err
	}

	var records []Phase1Record
	for _, row := range rows {
		r, err := phase1FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to parse phase1 row: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

// readPhase2 parses the phase-2 file, skipping the header row.
func (m *csvMirror) readPhase2() ([]Phase2Record, error) {
	rows, err := readRows(m.phase2Path)
	if err != nil {
		return nil, err
	}

	var records []Phase2Record
	for _, row := range rows {
		r, err := phase2FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to parse phase2 row: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

// overwritePhase1 replaces the phase-1 file with the given records.
func (m *csvMirror) overwritePhase1(records []Phase1Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.row())
	}
	return writeCSVFile(m.phase1Path, Phase1Headers, rows)
}

// overwritePhase2 replaces the phase-2 file with the given records.
func (m *csvMirror) overwritePhase2(records []Phase2Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.row())
	}
	return writeCSVFile(m.phase2Path, Phase2Headers, rows)
}

// appendRows encodes rows into a buffer and appends them to path with a
// single write while holding an exclusive lock on the file.
func appendRows(path string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to lock %s: %w", filepath.Base(path), err)
	}
	defer unix.Flock(int(file.Fd()), unix.LOCK_UN)

	if _, err := file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to append to %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeCSVFile writes headers plus rows, truncating any existing file.
func writeCSVFile(path string, headers []string, rows [][]string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to lock %s: %w", filepath.Base(path), err)
	}
	defer unix.Flock(int(file.Fd()), unix.LOCK_UN)

	w := csv.NewWriter(file)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

// readRows reads all data rows from path, skipping the header.
func readRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	all, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if len(all) <= 1 {
		return nil, nil
	}
	return all[1:], nil
}
