package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// EvidenceStore counts proof-of-work uploads for the check-out gate.
type EvidenceStore interface {
	CountSince(ctx context.Context, workOrderID int, since time.Time) (int, error)
}

// CheckOutService closes the caller's active work session. A session can
// only close with at least one photo evidence upload taken during it.
type CheckOutService struct {
	Sessions SessionStore
	Evidence EvidenceStore
	Geocoder GeoResolver
	Notifier AdminNotifier
	Logger   *slog.Logger
}

func (s *CheckOutService) CheckOut(ctx context.Context, userID int, lat, lon *float64, address string) (models.WorkSession, error) {
	session, err := s.Sessions.ActiveByUser(ctx, userID)
	if err != nil {
		return models.WorkSession{}, err
	}

	count, err := s.Evidence.CountSince(ctx, session.WorkOrderID, session.CheckedInAt)
	if err != nil {
		return models.WorkSession{}, err
	}
	if count == 0 {
		return models.WorkSession{}, models.ErrNoPhotoEvidence
	}

	now := timeNow().UTC()
	if !now.After(session.CheckedInAt) {
		return models.WorkSession{}, fmt.Errorf("check-out time %s is not after check-in %s", now, session.CheckedInAt)
	}

	hours := models.Round2(now.Sub(session.CheckedInAt).Hours())
	session.CheckedOutAt = &now
	session.OutLat = lat
	session.OutLon = lon
	session.OutAddress = s.resolveAddress(ctx, lat, lon, address)
	session.HoursWorked = &hours
	if err := s.Sessions.Close(ctx, session); err != nil {
		return models.WorkSession{}, err
	}

	if s.Notifier != nil {
		s.Notifier.NotifyAdmins(ctx,
			"Contractor checked out",
			fmt.Sprintf("Session on work order %d closed after %.2f hours", session.WorkOrderID, hours),
			map[string]string{
				"event":         "check_out",
				"user_id":       fmt.Sprint(userID),
				"work_order_id": fmt.Sprint(session.WorkOrderID),
				"hours_worked":  fmt.Sprintf("%.2f", hours),
			})
	}
	return session, nil
}

func (s *CheckOutService) resolveAddress(ctx context.Context, lat, lon *float64, address string) string {
	if address != "" {
		return address
	}
	if lat == nil || lon == nil {
		return ""
	}
	if s.Geocoder != nil {
		addr, ok, err := s.Geocoder.ReverseGeocode(ctx, *lat, *lon)
		if err != nil {
			s.Logger.Warn("reverse geocode failed", "err", err)
		}
		if ok {
			return addr
		}
	}
	return fmt.Sprintf("%.6f, %.6f", *lat, *lon)
}

// Timesheet returns the user's closed sessions for a period.
func (s *CheckOutService) Timesheet(ctx context.Context, userID int, from, to time.Time) ([]models.TimesheetEntry, error) {
	return s.Sessions.Timesheet(ctx, userID, from, to)
}
