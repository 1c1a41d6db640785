package survey

import (
	"log"
	"os"
	"strconv"

	"github.com/uzspeech/tts-survey-bot/internal/report"
)

// handleAdminCommand dispatches /admin_* commands. Non-admins get the same
// unknown-command reply as for any other bad command, so the admin surface
// is not discoverable by probing.
func (e *Engine) handleAdminCommand(userID int64, cmd string, args []string) {
	if !e.cfg.IsAdmin(userID) {
		e.sendText(userID, msgUnknownCommand)
		return
	}

	switch cmd {
	case "/admin_summary":
		e.adminSummary(userID)
	case "/admin_prompt_results":
		e.adminPromptResults(userID, args)
	case "/admin_export":
		e.adminExport(userID)
	default:
		e.sendText(userID, msgUnknownCommand)
	}
}

func (e *Engine) adminSummary(userID int64) {
	summary, err := report.BuildSummary(e.store)
	if err != nil {
		log.Printf("Warning: failed to build summary for admin %d: %v", userID, err)
		e.sendText(userID, msgPersistenceFailed)
		return
	}
	e.sendText(userID, summary.Format())
}

func (e *Engine) adminPromptResults(userID int64, args []string) {
	if len(args) != 1 {
		e.sendText(userID, "Usage: /admin_prompt_results <prompt number>")
		return
	}
	promptID, err := strconv.Atoi(args[0])
	if err != nil {
		e.sendText(userID, "Usage: /admin_prompt_results <prompt number>")
		return
	}

	averages, total, err := report.PromptResults(e.store, promptID)
	if err != nil {
		log.Printf("Warning: failed to build prompt %d results for admin %d: %v", promptID, userID, err)
		e.sendText(userID, msgPersistenceFailed)
		return
	}
	e.sendText(userID, report.FormatPromptResults(promptID, averages, total))
}

// adminExport sends the raw CSV mirrors. Empty files (header only or
// missing) are reported instead of sent.
func (e *Engine) adminExport(userID int64) {
	sent := 0
	for _, path := range []string{e.store.Phase1CSVPath(), e.store.Phase2CSVPath()} {
		if !hasDataRows(path) {
			continue
		}
		if err := e.sender.SendDocument(userID, path); err != nil {
			log.Printf("Warning: failed to send export %s to admin %d: %v", path, userID, err)
			e.sendText(userID, msgDeliveryFailed)
			return
		}
		sent++
	}
	if sent == 0 {
		e.sendText(userID, "No results recorded yet.")
	}
}

// hasDataRows reports whether a CSV file holds anything beyond its header.
func hasDataRows(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	return lines > 1
}
