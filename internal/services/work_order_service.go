package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// WorkOrderAcceptStore is the slice of WorkOrderRepository used here.
type WorkOrderAcceptStore interface {
	GetByID(ctx context.Context, id int) (models.WorkOrder, error)
	Accept(ctx context.Context, id int, now time.Time) (int, error)
}

// WorkOrderService covers the back-office work order flow: accepting an
// order approves it and opens its draft invoice.
type WorkOrderService struct {
	Orders WorkOrderAcceptStore
	Logger *slog.Logger
}

// Accept approves the order and returns the draft invoice id. Re-accepting
// is idempotent.
func (s *WorkOrderService) Accept(ctx context.Context, workOrderID int) (int, error) {
	invoiceID, err := s.Orders.Accept(ctx, workOrderID, timeNow().UTC())
	if err != nil {
		return 0, err
	}
	s.Logger.Info("work order accepted", "work_order_id", workOrderID, "invoice_id", invoiceID)
	return invoiceID, nil
}
