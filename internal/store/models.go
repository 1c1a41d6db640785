/*
Package store data models for persisted survey responses.

Column order in the CSV headers is fixed and must be preserved exactly by
every backend: downstream analysis consumes the files positionally.
*/
package store

import (
	"strconv"
	"time"
)

// Phase1Headers is the exact column order of the phase-1 result set.
var Phase1Headers = []string{
	"user_id",
	"timestamp_evaluation",
	"category",
	"prompt_id",
	"model_anonymous_label",
	"model_actual_name",
	"naturalness_rating",
	"clarity_rating",
	"emotional_tone_rating",
	"overall_preference_rating_phase1",
}

// Phase2Headers is the exact column order of the phase-2 result set.
var Phase2Headers = []string{
	"user_id",
	"final_preferred_model_anonymous_label",
	"final_preferred_model_actual_name",
	"final_comment",
	"timestamp_survey_completion",
}

// Phase1Record is one clip evaluation: a (user, category, prompt, model)
// tuple with its four ratings. Records are append-only; corrections are new
// rows, never edits.
type Phase1Record struct {
	UserID            int64     `json:"user_id"`
	EvaluatedAt       time.Time `json:"timestamp_evaluation"`
	Category          string    `json:"category"`
	PromptID          int       `json:"prompt_id"`
	AnonymousLabel    string    `json:"model_anonymous_label"`
	ActualModel       string    `json:"model_actual_name"`
	Naturalness       int       `json:"naturalness_rating"`
	Clarity           int       `json:"clarity_rating"`
	EmotionalTone     int       `json:"emotional_tone_rating"`
	OverallPreference int       `json:"overall_preference_rating_phase1"`
}

// row returns the record as CSV fields in Phase1Headers order.
func (r Phase1Record) row() []string {
	return []string{
		strconv.FormatInt(r.UserID, 10),
		r.EvaluatedAt.Format(time.RFC3339),
		r.Category,
		strconv.Itoa(r.PromptID),
		r.AnonymousLabel,
		r.ActualModel,
		strconv.Itoa(r.Naturalness),
		strconv.Itoa(r.Clarity),
		strconv.Itoa(r.EmotionalTone),
		strconv.Itoa(r.OverallPreference),
	}
}

// phase1FromRow parses CSV fields in Phase1Headers order.
func phase1FromRow(fields []string) (Phase1Record, error) {
	var r Phase1Record
	var err error

	if len(fields) != len(Phase1Headers) {
		return r, &RowFormatError{Expected: len(Phase1Headers), Got: len(fields)}
	}

	if r.UserID, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return r, err
	}
	if r.EvaluatedAt, err = time.Parse(time.RFC3339, fields[1]); err != nil {
		return r, err
	}
	r.Category = fields[2]
	if r.PromptID, err = strconv.Atoi(fields[3]); err != nil {
		return r, err
	}
	r.AnonymousLabel = fields[4]
	r.ActualModel = fields[5]
	if r.Naturalness, err = strconv.Atoi(fields[6]); err != nil {
		return r, err
	}
	if r.Clarity, err = strconv.Atoi(fields[7]); err != nil {
		return r, err
	}
	if r.EmotionalTone, err = strconv.Atoi(fields[8]); err != nil {
		return r, err
	}
	if r.OverallPreference, err = strconv.Atoi(fields[9]); err != nil {
		return r, err
	}
	return r, nil
}

// Phase2Record is a user's final preference: at most one per user.
// A non-empty CompletedAt is the sole source of truth for "this user has
// finished the entire survey."
type Phase2Record struct {
	UserID         int64     `json:"user_id"`
	PreferredLabel string    `json:"final_preferred_model_anonymous_label"`
	PreferredModel string    `json:"final_preferred_model_actual_name"`
	Comment        string    `json:"final_comment"`
	CompletedAt    time.Time `json:"timestamp_survey_completion"`
}

// row returns the record as CSV fields in Phase2Headers order.
func (r Phase2Record) row() []string {
	return []string{
		strconv.FormatInt(r.UserID, 10),
		r.PreferredLabel,
		r.PreferredModel,
		r.Comment,
		r.CompletedAt.Format(time.RFC3339),
	}
}

// phase2FromRow parses CSV fields in Phase2Headers order.
func phase2FromRow(fields []string) (Phase2Record, error) {
	var r Phase2Record
	var err error

	if len(fields) != len(Phase2Headers) {
		return r, &RowFormatError{Expected: len(Phase2Headers), Got: len(fields)}
	}

	if r.UserID, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return r, err
	}
	r.PreferredLabel = fields[1]
	r.PreferredModel = fields[2]
	r.Comment = fields[3]
	if r.CompletedAt, err = time.Parse(time.RFC3339, fields[4]); err != nil {
		return r, err
	}
	return r, nil
}
