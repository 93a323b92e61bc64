package models

import "time"

// WorkSession is one check-in/check-out pair for a contractor at a work
// order's building. A nil CheckedOutAt means the session is active; at most
// one active session may exist per user across all work orders.
type WorkSession struct {
	ID           int        `json:"id"`
	UserID       int        `json:"user_id"`
	WorkOrderID  int        `json:"work_order_id"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	InLat        *float64   `json:"in_lat,omitempty"`
	InLon        *float64   `json:"in_lon,omitempty"`
	InAddress    string     `json:"in_address"`
	OutLat       *float64   `json:"out_lat,omitempty"`
	OutLon       *float64   `json:"out_lon,omitempty"`
	OutAddress   string     `json:"out_address"`
	HoursWorked  *float64   `json:"hours_worked,omitempty"`
}

// Active reports whether the session is still open.
func (s WorkSession) Active() bool { return s.CheckedOutAt == nil }

// WorkEvidence is a photographic proof-of-work upload tied to a work order.
type WorkEvidence struct {
	ID          int       `json:"id"`
	WorkOrderID int       `json:"work_order_id"`
	UserID      int       `json:"user_id"`
	ImageURL    string    `json:"image_url"`
	TakenAt     time.Time `json:"taken_at"`
}

// TimesheetEntry is a per-session row in a contractor timesheet.
type TimesheetEntry struct {
	WorkOrderID  int       `json:"work_order_id"`
	Reference    string    `json:"reference"`
	CheckedInAt  time.Time `json:"checked_in_at"`
	CheckedOutAt time.Time `json:"checked_out_at"`
	HoursWorked  float64   `json:"hours_worked"`
}
