package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type fakeSessionStore struct {
	active     *models.WorkSession
	checkedIn  *models.WorkSession
	closed     *models.WorkSession
	checkInErr error
}

func (f *fakeSessionStore) CheckIn(ctx context.Context, s models.WorkSession) (models.WorkSession, error) {
	if f.checkInErr != nil {
		return models.WorkSession{}, f.checkInErr
	}
	s.ID = 99
	f.checkedIn = &s
	return s, nil
}

func (f *fakeSessionStore) ActiveByUser(ctx context.Context, userID int) (models.WorkSession, error) {
	if f.active == nil {
		return models.WorkSession{}, models.ErrNoActiveSession
	}
	return *f.active, nil
}

func (f *fakeSessionStore) Close(ctx context.Context, s models.WorkSession) error {
	f.closed = &s
	return nil
}

func (f *fakeSessionStore) Timesheet(ctx context.Context, userID int, from, to time.Time) ([]models.TimesheetEntry, error) {
	return nil, nil
}

type fakeBuildingStore struct {
	building models.Building
	assigned bool
}

func (f *fakeBuildingStore) GetByID(ctx context.Context, id int) (models.Building, error) {
	return f.building, nil
}

func (f *fakeBuildingStore) IsAssigned(ctx context.Context, userID, buildingID int) (bool, error) {
	return f.assigned, nil
}

type fakeUserStore struct {
	user models.User
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int) (models.User, error) {
	return f.user, nil
}

type fakeGeoResolver struct {
	address string
	ok      bool
	err     error
}

func (f *fakeGeoResolver) ReverseGeocode(ctx context.Context, lat, lon float64) (string, bool, error) {
	return f.address, f.ok, f.err
}

type fakeNotifier struct {
	calls  int
	titles []string
}

func (f *fakeNotifier) NotifyAdmins(ctx context.Context, title, body string, data map[string]string) {
	f.calls++
	f.titles = append(f.titles, title)
}

func ptr(v float64) *float64 { return &v }

func newCheckInService(sessions *fakeSessionStore, buildings *fakeBuildingStore, user models.User, order models.WorkOrder) (*CheckInService, *fakeNotifier) {
	notifier := &fakeNotifier{}
	return &CheckInService{
		Sessions:  sessions,
		Orders:    &fakeWorkOrderStore{order: order},
		Buildings: buildings,
		Users:     &fakeUserStore{user: user},
		Geocoder:  &fakeGeoResolver{address: "12 King Street, London", ok: true},
		Notifier:  notifier,
		Logger:    testLogger(),
	}, notifier
}

func approvedOrder() models.WorkOrder {
	return models.WorkOrder{ID: 7, Reference: "WO-7", BuildingID: 3, Status: models.WorkOrderApproved}
}

func contractor() models.User {
	return models.User{ID: 1, Name: "Dana", Role: models.RoleContractor}
}

func TestCheckInHappyPath(t *testing.T) {
	sessions := &fakeSessionStore{}
	buildings := &fakeBuildingStore{
		building: models.Building{ID: 3, Name: "Riverside House", Lat: ptr(51.5007), Lon: ptr(-0.1246)},
		assigned: true,
	}
	svc, notifier := newCheckInService(sessions, buildings, contractor(), approvedOrder())

	session, err := svc.CheckIn(context.Background(), 1, 7, ptr(51.5008), ptr(-0.1247), "")
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if session.ID == 0 {
		t.Error("session was not persisted")
	}
	if session.InAddress != "12 King Street, London" {
		t.Errorf("address = %q; want reverse-geocoded address", session.InAddress)
	}
	if notifier.calls != 1 {
		t.Errorf("notifier calls = %d; want 1", notifier.calls)
	}
}

func TestCheckInRefusesSecondActiveSession(t *testing.T) {
	sessions := &fakeSessionStore{active: &models.WorkSession{ID: 5, UserID: 1}}
	buildings := &fakeBuildingStore{assigned: true}
	svc, _ := newCheckInService(sessions, buildings, contractor(), approvedOrder())

	_, err := svc.CheckIn(context.Background(), 1, 7, nil, nil, "here")
	if !errors.Is(err, models.ErrActiveSessionExists) {
		t.Fatalf("err = %v; want ErrActiveSessionExists", err)
	}
	if sessions.checkedIn != nil {
		t.Error("session was persisted despite active session")
	}
}

func TestCheckInRequiresAssignmentForContractors(t *testing.T) {
	sessions := &fakeSessionStore{}
	buildings := &fakeBuildingStore{assigned: false}
	svc, _ := newCheckInService(sessions, buildings, contractor(), approvedOrder())

	_, err := svc.CheckIn(context.Background(), 1, 7, nil, nil, "here")
	if !errors.Is(err, models.ErrNotAssignedToBuilding) {
		t.Fatalf("err = %v; want ErrNotAssignedToBuilding", err)
	}
}

func TestCheckInSkipsAssignmentForAdmins(t *testing.T) {
	sessions := &fakeSessionStore{}
	buildings := &fakeBuildingStore{assigned: false}
	admin := models.User{ID: 2, Name: "Sam", Role: models.RoleAdmin}
	svc, _ := newCheckInService(sessions, buildings, admin, approvedOrder())

	if _, err := svc.CheckIn(context.Background(), 2, 7, nil, nil, "here"); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
}

func TestCheckInRefusesUnapprovedOrder(t *testing.T) {
	sessions := &fakeSessionStore{}
	buildings := &fakeBuildingStore{assigned: true}
	order := approvedOrder()
	order.Status = models.WorkOrderPending
	svc, _ := newCheckInService(sessions, buildings, contractor(), order)

	_, err := svc.CheckIn(context.Background(), 1, 7, nil, nil, "here")
	if !errors.Is(err, models.ErrWorkOrderNotCheckable) {
		t.Fatalf("err = %v; want ErrWorkOrderNotCheckable", err)
	}
}

func TestCheckInProximityGate(t *testing.T) {
	buildings := &fakeBuildingStore{
		building: models.Building{ID: 3, Lat: ptr(51.5007), Lon: ptr(-0.1246)},
		assigned: true,
	}

	// ~1 km away: outside the 50 m default radius.
	svc, _ := newCheckInService(&fakeSessionStore{}, buildings, contractor(), approvedOrder())
	_, err := svc.CheckIn(context.Background(), 1, 7, ptr(51.5097), ptr(-0.1246), "")
	if !errors.Is(err, models.ErrOutOfRange) {
		t.Fatalf("err = %v; want ErrOutOfRange", err)
	}

	// Building without coordinates skips the gate entirely.
	buildings.building = models.Building{ID: 3}
	sessions := &fakeSessionStore{}
	svc, _ = newCheckInService(sessions, buildings, contractor(), approvedOrder())
	if _, err := svc.CheckIn(context.Background(), 1, 7, ptr(51.5097), ptr(-0.1246), ""); err != nil {
		t.Fatalf("CheckIn without building coords: %v", err)
	}
}

func TestCheckInFallsBackToRawCoordinates(t *testing.T) {
	sessions := &fakeSessionStore{}
	buildings := &fakeBuildingStore{assigned: true}
	svc, _ := newCheckInService(sessions, buildings, contractor(), approvedOrder())
	svc.Geocoder = &fakeGeoResolver{ok: false}

	session, err := svc.CheckIn(context.Background(), 1, 7, ptr(51.5008), ptr(-0.1247), "")
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if session.InAddress != "51.500800, -0.124700" {
		t.Errorf("address = %q; want raw coordinate fallback", session.InAddress)
	}
}
