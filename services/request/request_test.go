package request

import (
	"context"
	"errors"
	"testing"

	requestRepo "homehub/database/repository/request"
	"homehub/models"
	"homehub/services/device"
	"homehub/services/policy"
	"homehub/stream"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type memRequestRepo struct {
	byID map[string]*models.DeviceRequest
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{byID: make(map[string]*models.DeviceRequest)}
}

func (r *memRequestRepo) GetByID(id string) (*models.DeviceRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, errors.New("request not found")
	}
	cp := *req
	return &cp, nil
}

func (r *memRequestRepo) GetAll() ([]models.DeviceRequest, error) {
	out := make([]models.DeviceRequest, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, *req)
	}
	return out, nil
}

func (r *memRequestRepo) GetByRequester(requesterID string) ([]models.DeviceRequest, error) {
	var out []models.DeviceRequest
	for _, req := range r.byID {
		if req.RequesterID == requesterID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *memRequestRepo) GetPending() ([]models.DeviceRequest, error) {
	var out []models.DeviceRequest
	for _, req := range r.byID {
		if req.Status == models.RequestPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *memRequestRepo) HasPending(deviceID, requesterID string) (bool, error) {
	for _, req := range r.byID {
		if req.DeviceID == deviceID && req.RequesterID == requesterID && req.Status == models.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRequestRepo) Create(req *models.DeviceRequest) error {
	cp := *req
	r.byID[req.ID] = &cp
	return nil
}

func (r *memRequestRepo) Resolve(id string, outcome models.RequestStatus) (*models.DeviceRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, errors.New("request not found")
	}
	if req.Status != models.RequestPending {
		return nil, requestRepo.ErrAlreadyResolved
	}
	req.Status = outcome
	cp := *req
	return &cp, nil
}

type memUserRepo struct {
	users map[string]*models.User
}

func (r *memUserRepo) GetByID(id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (r *memUserRepo) GetAll() ([]models.User, error)           { return nil, nil }
func (r *memUserRepo) GetByEmail(string) (*models.User, error)  { return nil, nil }
func (r *memUserRepo) Create(*models.User) error                { return nil }
func (r *memUserRepo) Update(*models.User) error                { return nil }
func (r *memUserRepo) Delete(string) error                      { return nil }
func (r *memUserRepo) UpdateSetDocument(string, bson.M) error   { return nil }
func (r *memUserRepo) GetByIDWithProjection(id string, _ bson.M) (*models.User, error) {
	return r.GetByID(id)
}

// fakeDeviceService covers only the paths Submit and Resolve touch.
type fakeDeviceService struct {
	device.DeviceService
	devices map[string]*models.Device
	applied []string
}

func (s *fakeDeviceService) GetByID(id string) (*models.Device, error) {
	d, ok := s.devices[id]
	if !ok {
		return nil, errors.New("device not found")
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDeviceService) ApplyStatus(_ context.Context, id string, status models.DeviceStatus, _ string, _ models.LogSource) (*models.Device, error) {
	d, ok := s.devices[id]
	if !ok {
		return nil, errors.New("device not found")
	}
	d.Status = status
	s.applied = append(s.applied, id+"="+string(status))
	cp := *d
	return &cp, nil
}

type fixedAccess struct {
	set policy.AccessSet
}

func (a fixedAccess) AllowedDeviceIDs(string) (policy.AccessSet, error) { return a.set, nil }

func newService(devices ...*models.Device) (*DefaultRequestService, *memRequestRepo, *fakeDeviceService, chan models.Event) {
	dm := make(map[string]*models.Device)
	for _, d := range devices {
		dm[d.ID] = d
	}
	repo := newMemRequestRepo()
	devSvc := &fakeDeviceService{devices: dm}
	hub := stream.NewHub()
	events := hub.Subscribe(8)
	users := &memUserRepo{users: map[string]*models.User{
		"u-guest": {ID: "u-guest", FullName: "Guest", Email: "guest@home", Role: models.RoleGuest},
		"u-child": {ID: "u-child", FullName: "Child", Email: "child@home", Role: models.RoleChild},
	}}
	svc := &DefaultRequestService{
		Repo:      repo,
		Users:     users,
		Devices:   devSvc,
		Access:    fixedAccess{set: policy.NewAccessSet()},
		Publisher: stream.NewPublisher(hub, nil, "", zap.NewNop()),
	}
	return svc, repo, devSvc, events
}

func TestSubmitCreatesPendingWithSnapshots(t *testing.T) {
	door := &models.Device{ID: "door-1", Name: "Front Door", Type: models.TypeDoor, Status: models.StatusClose, IsRestricted: true}
	svc, _, _, _ := newService(door)

	actor := device.Actor{ID: "u-guest", Role: models.RoleGuest}
	req, err := svc.Submit(context.Background(), actor, models.DeviceRequestInput{
		DeviceID:        "door-1",
		RequestedStatus: models.StatusOpen,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Status != models.RequestPending {
		t.Fatalf("expected PENDING, got %s", req.Status)
	}
	if req.Requester == nil || req.Requester.FullName != "Guest" {
		t.Fatalf("expected requester snapshot, got %+v", req.Requester)
	}
	if req.Device == nil || req.Device.Name != "Front Door" {
		t.Fatalf("expected device snapshot, got %+v", req.Device)
	}
}

func TestSubmitRejectsDuplicatePending(t *testing.T) {
	door := &models.Device{ID: "door-1", Name: "Door", Type: models.TypeDoor, Status: models.StatusClose}
	svc, _, _, _ := newService(door)

	actor := device.Actor{ID: "u-guest", Role: models.RoleGuest}
	in := models.DeviceRequestInput{DeviceID: "door-1", RequestedStatus: models.StatusOpen}
	if _, err := svc.Submit(context.Background(), actor, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Submit(context.Background(), actor, in); !errors.Is(err, ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending, got %v", err)
	}
}

func TestSubmitByAdminIsRejected(t *testing.T) {
	lamp := &models.Device{ID: "lamp-1", Name: "Lamp", Type: models.TypeLight, Status: models.StatusOff}
	svc, _, _, _ := newService(lamp)

	actor := device.Actor{ID: "u-guest", Role: models.RoleAdmin}
	_, err := svc.Submit(context.Background(), actor, models.DeviceRequestInput{
		DeviceID:        "lamp-1",
		RequestedStatus: models.StatusOn,
	})
	if !errors.Is(err, ErrDirectActionAllowed) {
		t.Fatalf("expected ErrDirectActionAllowed, got %v", err)
	}
}

func TestSubmitValidatesStatusDomain(t *testing.T) {
	door := &models.Device{ID: "door-1", Name: "Door", Type: models.TypeDoor, Status: models.StatusClose}
	svc, _, _, _ := newService(door)

	actor := device.Actor{ID: "u-guest", Role: models.RoleGuest}
	_, err := svc.Submit(context.Background(), actor, models.DeviceRequestInput{
		DeviceID:        "door-1",
		RequestedStatus: models.StatusOn, // doors OPEN/CLOSE only
	})
	if !errors.Is(err, device.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestResolveApprovalAppliesDeviceStatusAndTargetsEvent(t *testing.T) {
	heater := &models.Device{ID: "heater-1", Name: "Heater", Type: models.TypeOther, Status: models.StatusOff, IsRestricted: true}
	svc, _, devSvc, events := newService(heater)

	actor := device.Actor{ID: "u-child", Role: models.RoleChild}
	req, err := svc.Submit(context.Background(), actor, models.DeviceRequestInput{
		DeviceID:        "heater-1",
		RequestedStatus: models.StatusOn,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, err := svc.Resolve(context.Background(), "u-admin", req.ID, models.RequestApproved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != models.RequestApproved {
		t.Fatalf("expected APPROVED, got %s", resolved.Status)
	}
	if len(devSvc.applied) != 1 || devSvc.applied[0] != "heater-1=ON" {
		t.Fatalf("expected heater-1=ON applied, got %v", devSvc.applied)
	}

	ev := <-events
	if ev.Type != models.EventDeviceRequestUpdated {
		t.Fatalf("expected request update event, got %s", ev.Type)
	}
	if ev.UserID != "u-child" {
		t.Fatalf("expected event targeted at requester, got %q", ev.UserID)
	}
	if ev.Request == nil || ev.Request.NewStatus != models.StatusOn {
		t.Fatalf("expected NewStatus ON on event, got %+v", ev.Request)
	}
}

func TestResolveRejectionLeavesDeviceUntouched(t *testing.T) {
	tv := &models.Device{ID: "tv-1", Name: "TV", Type: models.TypeOther, Status: models.StatusOff, IsRestricted: true}
	svc, _, devSvc, events := newService(tv)

	actor := device.Actor{ID: "u-child", Role: models.RoleChild}
	req, err := svc.Submit(context.Background(), actor, models.DeviceRequestInput{
		DeviceID:        "tv-1",
		RequestedStatus: models.StatusOn,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), "u-admin", req.ID, models.RequestRejected); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devSvc.applied) != 0 {
		t.Fatalf("expected no device writes, got %v", devSvc.applied)
	}

	ev := <-events
	if ev.Request == nil || ev.Request.Status != models.RequestRejected {
		t.Fatalf("expected REJECTED event, got %+v", ev.Request)
	}
}

func TestResolveIsTerminal(t *testing.T) {
	door := &models.Device{ID: "door-1", Name: "Door", Type: models.TypeDoor, Status: models.StatusClose}
	svc, _, devSvc, _ := newService(door)

	actor := device.Actor{ID: "u-guest", Role: models.RoleGuest}
	req, err := svc.Submit(context.Background(), actor, models.DeviceRequestInput{
		DeviceID:        "door-1",
		RequestedStatus: models.StatusOpen,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), "u-admin", req.ID, models.RequestRejected); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A second decision must not flip the outcome or touch the device.
	if _, err := svc.Resolve(context.Background(), "u-admin", req.ID, models.RequestApproved); !errors.Is(err, requestRepo.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if len(devSvc.applied) != 0 {
		t.Fatalf("expected no device writes after late approval, got %v", devSvc.applied)
	}

	stored, err := svc.GetByID(req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != models.RequestRejected {
		t.Fatalf("expected outcome to stay REJECTED, got %s", stored.Status)
	}
}

func TestResolveValidatesOutcome(t *testing.T) {
	door := &models.Device{ID: "door-1", Name: "Door", Type: models.TypeDoor, Status: models.StatusClose}
	svc, _, _, _ := newService(door)

	if _, err := svc.Resolve(context.Background(), "u-admin", "any", models.RequestPending); err == nil {
		t.Fatal("expected an error for a PENDING outcome")
	}
}
