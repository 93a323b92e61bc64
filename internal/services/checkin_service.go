package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/geo"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// SessionStore is the slice of WorkSessionRepository the workforce services
// depend on.
type SessionStore interface {
	CheckIn(ctx context.Context, s models.WorkSession) (models.WorkSession, error)
	ActiveByUser(ctx context.Context, userID int) (models.WorkSession, error)
	Close(ctx context.Context, s models.WorkSession) error
	Timesheet(ctx context.Context, userID int, from, to time.Time) ([]models.TimesheetEntry, error)
}

// BuildingStore resolves buildings and contractor assignments.
type BuildingStore interface {
	GetByID(ctx context.Context, id int) (models.Building, error)
	IsAssigned(ctx context.Context, userID, buildingID int) (bool, error)
}

// UserStore resolves the acting user for role checks.
type UserStore interface {
	GetByID(ctx context.Context, id int) (models.User, error)
}

// GeoResolver turns coordinates into a human-readable address.
type GeoResolver interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, bool, error)
}

// AdminNotifier fans a workforce event out to the back office. Calls are
// best-effort; implementations log their own failures.
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, title, body string, data map[string]string)
}

// CheckInService opens a work session for a contractor at a work order's
// building. Guards run in a fixed order and the first failure wins; the
// session insert itself re-checks the active-session guard under a row
// lock, so a concurrent double check-in loses cleanly.
type CheckInService struct {
	Sessions  SessionStore
	Orders    WorkOrderStore
	Buildings BuildingStore
	Users     UserStore
	Geocoder  GeoResolver
	Notifier  AdminNotifier
	Logger    *slog.Logger
	RadiusM   float64
}

func (s *CheckInService) radius() float64 {
	if s.RadiusM > 0 {
		return s.RadiusM
	}
	return geo.DefaultCheckInRadiusM
}

func (s *CheckInService) CheckIn(ctx context.Context, userID, workOrderID int, lat, lon *float64, address string) (models.WorkSession, error) {
	if _, err := s.Sessions.ActiveByUser(ctx, userID); err == nil {
		return models.WorkSession{}, models.ErrActiveSessionExists
	} else if !errors.Is(err, models.ErrNoActiveSession) {
		return models.WorkSession{}, err
	}

	order, err := s.Orders.GetByID(ctx, workOrderID)
	if err != nil {
		return models.WorkSession{}, err
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return models.WorkSession{}, err
	}
	if user.RequiresBuildingAssignment() {
		assigned, err := s.Buildings.IsAssigned(ctx, userID, order.BuildingID)
		if err != nil {
			return models.WorkSession{}, err
		}
		if !assigned {
			return models.WorkSession{}, models.ErrNotAssignedToBuilding
		}
	}

	if !order.Checkable() {
		return models.WorkSession{}, models.ErrWorkOrderNotCheckable
	}

	building, err := s.Buildings.GetByID(ctx, order.BuildingID)
	if err != nil {
		return models.WorkSession{}, err
	}
	// A building the geocode sweep has not filled in yet skips the gate.
	if building.HasCoordinates() {
		if !geo.WithinRadius(lat, lon, building.Lat, building.Lon, s.radius()) {
			return models.WorkSession{}, models.ErrOutOfRange
		}
	}

	session := models.WorkSession{
		UserID:      userID,
		WorkOrderID: workOrderID,
		CheckedInAt: timeNow().UTC(),
		InLat:       lat,
		InLon:       lon,
		InAddress:   s.resolveAddress(ctx, lat, lon, address),
	}
	session, err = s.Sessions.CheckIn(ctx, session)
	if err != nil {
		return models.WorkSession{}, err
	}

	if s.Notifier != nil {
		s.Notifier.NotifyAdmins(ctx,
			"Contractor checked in",
			fmt.Sprintf("%s checked in at %s (%s)", user.Name, building.Name, session.InAddress),
			map[string]string{
				"event":         "check_in",
				"user_id":       fmt.Sprint(userID),
				"work_order_id": fmt.Sprint(workOrderID),
			})
	}
	return session, nil
}

// resolveAddress prefers the caller-supplied address, then a reverse
// geocode, then the raw coordinate pair. Geocoder failures are soft.
func (s *CheckInService) resolveAddress(ctx context.Context, lat, lon *float64, address string) string {
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
