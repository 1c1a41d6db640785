/*
Package report aggregates persisted survey responses into the summaries
served by the admin commands. All aggregation works over full scans of the
progress store; the result set is small enough that no incremental
bookkeeping is warranted.
*/
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/uzspeech/tts-survey-bot/internal/store"
)

// ModelAverage is the mean overall-preference rating a label received in
// phase 1, with the number of ratings behind it.
type ModelAverage struct {
	Label   string
	Average float64
	Count   int
}

// VoteCount is the number of final phase-2 votes a label received.
type VoteCount struct {
	Label   string
	Votes   int
	Percent float64
}

// Summary is the aggregate view of the whole survey.
type Summary struct {
	Participants   int // distinct users with at least one phase-1 record
	Completed      int // distinct users with a phase-2 record
	Phase1Records  int
	ModelAverages  []ModelAverage // sorted by average descending
	PreferenceVote []VoteCount    // sorted by votes descending
}

// BuildSummary aggregates everything the store holds.
func BuildSummary(st store.Store) (*Summary, error) {
	phase1, err := st.ReadAllPhase1()
	if err != nil {
		return nil, fmt.Errorf("failed to read phase1 records: %w", err)
	}
	phase2, err := st.ReadAllPhase2()
	if err != nil {
		return nil, fmt.Errorf("failed to read phase2 records: %w", err)
	}

	s := &Summary{Phase1Records: len(phase1)}

	users := make(map[int64]struct{})
	for _, r := range phase1 {
		users[r.UserID] = struct{}{}
	}
	s.Participants = len(users)

	// Distinct users, not rows: a mirror of diverged CSV files can hold
	// duplicate phase-2 rows for one user.
	completed := make(map[int64]struct{})
	for _, r := range phase2 {
		completed[r.UserID] = struct{}{}
	}
	s.Completed = len(completed)

	s.ModelAverages = averagesByLabel(phase1)
	s.PreferenceVote = votesByLabel(phase2)
	return s, nil
}

// PromptResults returns per-label averages restricted to one prompt.
func PromptResults(st store.Store, promptID int) ([]ModelAverage, int, error) {
	phase1, err := st.ReadAllPhase1()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read phase1 records: %w", err)
	}

	filtered := phase1[:0:0]
	for _, r := range phase1 {
		if r.PromptID == promptID {
			filtered = append(filtered, r)
		}
	}
	return averagesByLabel(filtered), len(filtered), nil
}

// averagesByLabel computes the mean overall-preference rating per anonymous
// label, sorted by average descending with the label as tie-break.
func averagesByLabel(records []store.Phase1Record) []ModelAverage {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range records {
		sums[r.AnonymousLabel] += r.OverallPreference
		counts[r.AnonymousLabel]++
	}

	out := make([]ModelAverage, 0, len(sums))
	for label, sum := range sums {
		out = append(out, ModelAverage{
			Label:   label,
			Average: float64(sum) / float64(counts[label]),
			Count:   counts[label],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// votesByLabel counts final preferences per label, sorted by votes
// descending with the label as tie-break.
func votesByLabel(records []store.Phase2Record) []VoteCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.PreferredLabel]++
	}

	total := len(records)
	out := make([]VoteCount, 0, len(counts))
	for label, votes := range counts {
		v := VoteCount{Label: label, Votes: votes}
		if total > 0 {
			v.Percent = 100 * float64(votes) / float64(total)
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Format renders the summary as a plain-text report.
func (s *Summary) Format() string {
	var b strings.Builder
	b.WriteString("Survey summary\n")
	fmt.Fprintf(&b, "Participants: %d\n", s.Participants)
	fmt.Fprintf(&b, "Completed surveys: %d\n", s.Completed)
	fmt.Fprintf(&b, "Phase 1 evaluations: %d\n", s.Phase1Records)

	if len(s.ModelAverages) > 0 {
		b.WriteString("\nAverage overall preference (phase 1):\n")
		for _, m := range s.ModelAverages {
			fmt.Fprintf(&b, "  Model %s: %.2f (%d ratings)\n", m.Label, m.Average, m.Count)
		}
	}

	if len(s.PreferenceVote) > 0 {
		b.WriteString("\nFinal preference votes (phase 2):\n")
		for _, v := range s.PreferenceVote {
			fmt.Fprintf(&b, "  Model %s: %d (%.1f%%)\n", v.Label, v.Votes, v.Percent)
		}
	}
	return b.String()
}

// FormatPromptResults renders per-prompt averages as a plain-text report.
func FormatPromptResults(promptID int, averages []ModelAverage, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Results for prompt %d\n", promptID)
	fmt.Fprintf(&b, "Evaluations: %d\n", total)
	for _, m := range averages {
		fmt.Fprintf(&b, "  Model %s: %.2f (%d ratings)\n", m.Label, m.Average, m.Count)
	}
	if len(averages) == 0 {
		b.WriteString("  No evaluations recorded yet.\n")
	}
	return b.String()
}
