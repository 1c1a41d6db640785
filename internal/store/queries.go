package store

import (
	"fmt"
	"time"
)

// insertPhase1 inserts a batch of phase-1 records in one transaction.
func (d *database) insertPhase1(records []Phase1Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := d.bind(`
		INSERT INTO phase1_results (
			user_id, timestamp_evaluation, category, prompt_id,
			model_anonymous_label, model_actual_name,
			naturalness_rating, clarity_rating, emotional_tone_rating,
			overall_preference_rating_phase1
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	for _, r := range records {
		if _, err := tx.Exec(query,
			r.UserID,
			r.EvaluatedAt.Format(time.RFC3339),
			r.Category,
			r.PromptID,
			r.AnonymousLabel,
			r.ActualModel,
			r.Naturalness,
			r.Clarity,
			r.EmotionalTone,
			r.OverallPreference,
		); err != nil {
			return fmt.Errorf("failed to insert phase1 record: %w", err)
		}
	}

	return tx.Commit()
}

// insertPhase2 inserts a single phase-2 record.
func (d *database) insertPhase2(r Phase2Record) error {
	query := d.bind(`
		INSERT INTO phase2_results (
			user_id, final_preferred_model_anonymous_label,
			final_preferred_model_actual_name, final_comment,
			timestamp_survey_completion
		) VALUES (?, ?, ?, ?, ?)
	`)

	_, err := d.db.Exec(query,
		r.UserID,
		r.PreferredLabel,
		r.PreferredModel,
		r.Comment,
		r.CompletedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert phase2 record: %w", err)
	}
	return nil
}

// hasCompletedPrompt reports whether any phase-1 row exists for the pair.
func (d *database) hasCompletedPrompt(userID int64, promptID int) (bool, error) {
	query := d.bind("SELECT COUNT(*) FROM phase1_results WHERE user_id = ? AND prompt_id = ?")

	var count int
	if err := d.db.QueryRow(query, userID, promptID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query prompt completion: %w", err)
	}
	return count > 0, nil
}

// hasCompletedSurvey reports whether a phase-2 row with a non-empty
// completion timestamp exists for the user.
func (d *database) hasCompletedSurvey(userID int64) (bool, error) {
	query := d.bind(`
		SELECT COUNT(*) FROM phase2_results
		WHERE user_id = ? AND timestamp_survey_completion != ''
	`)

	var count int
	if err := d.db.QueryRow(query, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query survey completion: %w", err)
	}
	return count > 0, nil
}

// listCompletedUsers returns users with a non-empty completion timestamp.
func (d *database) listCompletedUsers() (map[int64]struct{}, error) {
	rows, err := d.db.Query("SELECT DISTINCT user_id FROM phase2_results WHERE timestamp_survey_completion != ''")
	if err != nil {
		return nil, fmt.Errorf("failed to list completed users: %w", err)
	}
	defer rows.Close()

	users := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users[id] = struct{}{}
	}
	return users, rows.Err()
}

// readAllPhase1 returns every phase-1 row in insertion order.
func (d *database) readAllPhase1() ([]Phase1Record, error) {
	rows, err := d.db.Query(`
		SELECT user_id, timestamp_evaluation, category, prompt_id,
		       model_anonymous_label, model_actual_name,
		       naturalness_rating, clarity_rating, emotional_tone_rating,
		       overall_preference_rating_phase1
		FROM phase1_results ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read phase1 results: %w", err)
	}
	defer rows.Close()

	var records []Phase1Record
	for rows.Next() {
		var r Phase1Record
		var ts string
		if err := rows.Scan(
			&r.UserID, &ts, &r.Category, &r.PromptID,
			&r.AnonymousLabel, &r.ActualModel,
			&r.Naturalness, &r.Clarity, &r.EmotionalTone,
			&r.OverallPreference,
		); err != nil {
			return nil, err
		}
		if r.EvaluatedAt, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("failed to parse evaluation timestamp: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// readAllPhase2 returns every phase-2 row in insertion order.
func (d *database) readAllPhase2() ([]Phase2Record, error) {
	rows, err := d.db.Query(`
		SELECT user_id, final_preferred_model_anonymous_label,
		       final_preferred_model_actual_name, final_comment,
		       timestamp_survey_completion
		FROM phase2_results ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read phase2 results: %w", err)
	}
	defer rows.Close()

	var records []Phase2Record
	for rows.Next() {
		var r Phase2Record
		var ts string
		if err := rows.Scan(&r.UserID, &r.PreferredLabel, &r.PreferredModel, &r.Comment, &ts); err != nil {
			return nil, err
		}
		if ts != "" {
			if r.CompletedAt, err = time.Parse(time.RFC3339, ts); err != nil {
				return nil, fmt.Errorf("failed to parse completion timestamp: %w", err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// replaceAll overwrites both tables with the given rows in one transaction.
// Used by the CSV-to-database mirror.
func (d *database) replaceAll(phase1 []Phase1Record, phase2 []Phase2Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM phase1_results"); err != nil {
		return fmt.Errorf("failed to clear phase1_results: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM phase2_results"); err != nil {
		return fmt.Errorf("failed to clear phase2_results: %w", err)
	}

	p1 := d.bind(`
		INSERT INTO phase1_results (
			user_id, timestamp_evaluation, category, prompt_id,
			model_anonymous_label, model_actual_name,
			naturalness_rating, clarity_rating, emotional_tone_rating,
			overall_preference_rating_phase1
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, r := range phase1 {
		if _, err := tx.Exec(p1,
			r.UserID, r.EvaluatedAt.Format(time.RFC3339), r.Category, r.PromptID,
			r.AnonymousLabel, r.ActualModel,
			r.Naturalness, r.Clarity, r.EmotionalTone, r.OverallPreference,
		); err != nil {
			return fmt.Errorf("failed to mirror phase1 record: %w", err)
		}
	}

	p2 := d.bind(`
		INSERT INTO phase2_results (
			user_id, final_preferred_model_anonymous_label,
			final_preferred_model_actual_name, final_comment,
			timestamp_survey_completion
		) VALUES (?, ?, ?, ?, ?)
	`)
	for _, r := range phase2 {
		if _, err := tx.Exec(p2,
			r.UserID, r.PreferredLabel, r.PreferredModel, r.Comment,
			r.CompletedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to mirror phase2 record: %w", err)
		}
	}

	return tx.Commit()
}
