package fsm

import (
	"context"
	"database/sql"
	"strings"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// Canonical invoice statuses shared by the local invoice record and its
// FreshBooks mirror. "void" is accepted on input but normalizes to "voided".
const (
	StatusDraft  = "draft"
	StatusSent   = "sent"
	StatusViewed = "viewed"
	StatusPaid   = "paid"
	StatusVoid   = "void"
	StatusVoided = "voided"
)

var transitions = map[string]map[string]struct{}{
	StatusDraft: {StatusSent: {}},
	StatusSent: {
		StatusViewed: {},
		StatusPaid:   {},
		StatusVoided: {},
	},
	StatusViewed: {
		StatusPaid:   {},
		StatusVoided: {},
	},
	StatusPaid:   {},
	StatusVoid:   {},
	StatusVoided: {},
}

// synonyms maps remote spellings and the legacy numeric encoding onto the
// canonical vocabulary. FreshBooks reports drafts as 1, sent as 2, viewed
// as 3 and paid/auto-paid as 4/5.
var synonyms = map[string]string{
	"void":                    StatusVoided,
	"sent - awaiting payment": StatusSent,
	"voided + email sent":     StatusVoided,
	"voided+email sent":       StatusVoided,
	"disputed":                StatusSent,
	"auto-paid":               StatusPaid,
	"1":                       StatusDraft,
	"2":                       StatusSent,
	"3":                       StatusViewed,
	"4":                       StatusPaid,
	"5":                       StatusPaid,
}

// Normalize maps a raw remote status onto the canonical taxonomy.
// Unrecognized values are returned trimmed and lowercased but otherwise
// untouched: an unknown status is a data-quality warning, not a failure.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	// collapse internal spacing so "Voided+Email Sent" and
	// "voided + email sent" land on the same key
	compact := strings.Join(strings.Fields(s), " ")
	if canonical, ok := synonyms[compact]; ok {
		return canonical
	}
	return compact
}

// CanTransition reports whether an invoice may move from the current status
// to the target. An unset current status admits any initial assignment, and
// target == current is an idempotent no-op.
func CanTransition(current, target string) bool {
	if current == "" {
		return true
	}
	if current == target {
		return true
	}
	allowed, ok := transitions[current]
	if !ok {
		return false
	}
	_, ok = allowed[target]
	return ok
}

// IsTerminal reports whether no further transition is permitted.
func IsTerminal(status string) bool {
	switch status {
	case StatusPaid, StatusVoid, StatusVoided:
		return true
	}
	return false
}

// Apply updates an invoice status using the status column itself as the
// optimistic token: a concurrent writer that already moved the invoice off
// fromStatus makes the update match zero rows.
func Apply(ctx context.Context, tx *sql.Tx, invoiceID int, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return models.ErrInvalidTransition
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		toStatus, invoiceID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
