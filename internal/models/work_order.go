package models

import "time"

// Work order statuses. Check-in is gated on StatusApproved.
const (
	WorkOrderPending   = "pending"
	WorkOrderApproved  = "approved"
	WorkOrderDeclined  = "declined"
	WorkOrderCompleted = "completed"
)

// WorkOrder is a window schedule repair job for a building. Accepting it
// creates the draft invoice.
type WorkOrder struct {
	ID           int        `json:"id"`
	Reference    string     `json:"reference"`
	ClientName   string     `json:"client_name"`
	ClientEmail  string     `json:"client_email"`
	BuildingID   int        `json:"building_id"`
	Status       string     `json:"status"`
	AmountIncVAT float64    `json:"amount_inc_vat"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Checkable reports whether contractors may check in against this order.
func (w WorkOrder) Checkable() bool {
	return w.Status == WorkOrderApproved
}
