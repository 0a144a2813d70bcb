package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"homehub/models"
	"homehub/services/policy"
)

type fakeDeviceGateway struct {
	devices     map[string]models.Device
	updateCalls []string
	failUpdate  bool
	failList    bool
}

func newFakeDeviceGateway(devices ...models.Device) *fakeDeviceGateway {
	g := &fakeDeviceGateway{devices: make(map[string]models.Device)}
	for _, d := range devices {
		g.devices[d.ID] = d
	}
	return g
}

func (g *fakeDeviceGateway) GetDevice(_ context.Context, id string) (*models.Device, error) {
	d, ok := g.devices[id]
	if !ok {
		return nil, fmt.Errorf("device %s not found", id)
	}
	return &d, nil
}

func (g *fakeDeviceGateway) ListDevices(_ context.Context) ([]models.Device, error) {
	if g.failList {
		return nil, errors.New("listing unavailable")
	}
	out := make([]models.Device, 0, len(g.devices))
	for _, d := range g.devices {
		out = append(out, d)
	}
	return out, nil
}

func (g *fakeDeviceGateway) UpdateStatus(_ context.Context, id string, status models.DeviceStatus) (*models.Device, error) {
	g.updateCalls = append(g.updateCalls, fmt.Sprintf("%s=%s", id, status))
	if g.failUpdate {
		return nil, errors.New("server rejected update")
	}
	d := g.devices[id]
	d.Status = status
	g.devices[id] = d
	return &d, nil
}

type fakeRequestGateway struct {
	submitted  []models.DeviceRequestInput
	requests   []models.DeviceRequest
	failSubmit bool
	nextID     int
}

func (g *fakeRequestGateway) Submit(_ context.Context, in models.DeviceRequestInput) (*models.DeviceRequest, error) {
	g.submitted = append(g.submitted, in)
	if g.failSubmit {
		return nil, errors.New("submission failed")
	}
	g.nextID++
	req := models.DeviceRequest{
		ID:              fmt.Sprintf("req-%d", g.nextID),
		DeviceID:        in.DeviceID,
		RequestedStatus: in.RequestedStatus,
		Status:          models.RequestPending,
	}
	g.requests = append(g.requests, req)
	return &req, nil
}

func (g *fakeRequestGateway) ListMine(_ context.Context) ([]models.DeviceRequest, error) {
	return append([]models.DeviceRequest(nil), g.requests...), nil
}

func (g *fakeRequestGateway) resolve(id string, outcome models.RequestStatus) {
	for i := range g.requests {
		if g.requests[i].ID == id {
			g.requests[i].Status = outcome
		}
	}
}

type recordingNotifier struct {
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Failure(msg string) { n.failures = append(n.failures, msg) }

func admin() ActorContext {
	return ActorContext{ID: "u-admin", Role: models.RoleAdmin}
}

func setup(devices ...models.Device) (*Controller, *fakeDeviceGateway, *fakeRequestGateway, *recordingNotifier) {
	dg := newFakeDeviceGateway(devices...)
	rg := &fakeRequestGateway{}
	n := &recordingNotifier{}
	c := NewController(dg, rg, n, nil)
	c.Refresh(context.Background())
	return c, dg, rg, n
}

func TestAdminTogglesLightDirectly(t *testing.T) {
	light := models.Device{ID: "light-1", Name: "Kitchen Light", Type: models.TypeLight, Status: models.StatusOff}
	c, dg, rg, n := setup(light)

	if err := c.Toggle(context.Background(), admin(), "light-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dg.updateCalls) != 1 || dg.updateCalls[0] != "light-1=ON" {
		t.Fatalf("expected one direct update light-1=ON, got %v", dg.updateCalls)
	}
	if len(rg.submitted) != 0 {
		t.Fatalf("expected no request submission, got %v", rg.submitted)
	}
	if d, _ := c.Cache().Device("light-1"); d.Status != models.StatusOn {
		t.Fatalf("expected cached status ON, got %s", d.Status)
	}
	if len(n.successes) != 1 {
		t.Fatalf("expected one success notification, got %v", n.successes)
	}
}

func TestGuestToggleFilesRequest(t *testing.T) {
	door := models.Device{ID: "door-1", Name: "Front Door", Type: models.TypeDoor, Status: models.StatusClose}
	c, dg, rg, _ := setup(door)

	guest := ActorContext{ID: "u-guest", Role: models.RoleGuest, Allowed: policy.NewAccessSet("door-1")}
	if err := c.Toggle(context.Background(), guest, "door-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dg.updateCalls) != 0 {
		t.Fatalf("expected no direct update, got %v", dg.updateCalls)
	}
	if len(rg.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(rg.submitted))
	}
	if rg.submitted[0].DeviceID != "door-1" || rg.submitted[0].RequestedStatus != models.StatusOpen {
		t.Fatalf("expected request for door-1=OPEN, got %+v", rg.submitted[0])
	}
	if !c.Cache().IsPending("door-1") {
		t.Fatal("expected a pending marker for door-1")
	}
}

func TestAdultRestrictedDeviceApprovalFlow(t *testing.T) {
	heater := models.Device{ID: "heater-1", Name: "Heater", Type: models.TypeOther, Status: models.StatusOff, IsRestricted: true}
	c, dg, rg, n := setup(heater)

	adult := ActorContext{ID: "u-adult", Role: models.RoleAdult, Allowed: policy.NewAccessSet("heater-1")}
	if err := c.Toggle(context.Background(), adult, "heater-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rg.submitted) != 1 || rg.submitted[0].RequestedStatus != models.StatusOn {
		t.Fatalf("expected request heater-1=ON, got %v", rg.submitted)
	}

	// Server approves: device flips server-side, event arrives.
	rg.resolve("req-1", models.RequestApproved)
	d := dg.devices["heater-1"]
	d.Status = models.StatusOn
	dg.devices["heater-1"] = d
	c.applyRequestUpdate(context.Background(), models.RequestUpdateEvent{
		RequestID:  "req-1",
		Status:     models.RequestApproved,
		DeviceID:   "heater-1",
		DeviceName: "Heater",
		NewStatus:  models.StatusOn,
	})

	if d, _ := c.Cache().Device("heater-1"); d.Status != models.StatusOn {
		t.Fatalf("expected cached status ON after approval, got %s", d.Status)
	}
	if c.Cache().IsPending("heater-1") {
		t.Fatal("expected pending marker cleared after approval")
	}
	if len(n.successes) != 2 { // submission + approval
		t.Fatalf("expected two success notifications, got %v", n.successes)
	}
}

func TestChildRejectionLeavesStatusUntouched(t *testing.T) {
	tv := models.Device{ID: "tv-1", Name: "TV", Type: models.TypeOther, Status: models.StatusOff, IsRestricted: true}
	c, _, rg, n := setup(tv)

	child := ActorContext{ID: "u-child", Role: models.RoleChild, Allowed: policy.NewAccessSet("tv-1")}
	if err := c.Toggle(context.Background(), child, "tv-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rg.resolve("req-1", models.RequestRejected)
	c.applyRequestUpdate(context.Background(), models.RequestUpdateEvent{
		RequestID: "req-1",
		Status:    models.RequestRejected,
		DeviceID:  "tv-1",
	})

	if d, _ := c.Cache().Device("tv-1"); d.Status != models.StatusOff {
		t.Fatalf("expected status unchanged OFF after rejection, got %s", d.Status)
	}
	if c.Cache().IsPending("tv-1") {
		t.Fatal("expected pending marker cleared after rejection")
	}
	if len(n.failures) != 1 {
		t.Fatalf("expected one failure notification, got %v", n.failures)
	}
}

func TestUnknownResolutionEventIsNoOpPlusRefresh(t *testing.T) {
	lamp := models.Device{ID: "lamp-1", Name: "Lamp", Type: models.TypeLight, Status: models.StatusOff}
	c, _, _, n := setup(lamp)

	// No local marker exists for this request id; must not panic or notify.
	c.applyRequestUpdate(context.Background(), models.RequestUpdateEvent{
		RequestID: "req-elsewhere",
		Status:    models.RequestRejected,
	})

	if len(n.failures) != 0 || len(n.successes) != 0 {
		t.Fatalf("expected silent handling, got successes=%v failures=%v", n.successes, n.failures)
	}
	if d, ok := c.Cache().Device("lamp-1"); !ok || d.Status != models.StatusOff {
		t.Fatal("expected listing refresh to keep the lamp cached")
	}
}

func TestApprovalEventIsIdempotent(t *testing.T) {
	fan := models.Device{ID: "fan-1", Name: "Fan", Type: models.TypeFan, Status: models.StatusOff, IsRestricted: true}
	c, dg, rg, n := setup(fan)

	adult := ActorContext{ID: "u-adult", Role: models.RoleAdult, Allowed: policy.NewAccessSet("fan-1")}
	if err := c.Toggle(context.Background(), adult, "fan-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rg.resolve("req-1", models.RequestApproved)
	d := dg.devices["fan-1"]
	d.Status = models.StatusOn
	dg.devices["fan-1"] = d

	ev := models.RequestUpdateEvent{
		RequestID: "req-1",
		Status:    models.RequestApproved,
		DeviceID:  "fan-1",
		NewStatus: models.StatusOn,
	}
	c.applyRequestUpdate(context.Background(), ev)
	c.applyRequestUpdate(context.Background(), ev)

	if d, _ := c.Cache().Device("fan-1"); d.Status != models.StatusOn {
		t.Fatalf("expected ON after repeated approval, got %s", d.Status)
	}
	if c.Cache().IsPending("fan-1") {
		t.Fatal("expected no pending marker after repeated approval")
	}
	// Submission plus exactly one approval notification; the re-delivery
	// is a silent refresh.
	if len(n.successes) != 2 {
		t.Fatalf("expected two success notifications, got %v", n.successes)
	}
}

func TestResolutionBeforeMarkerDoesNotCrash(t *testing.T) {
	lamp := models.Device{ID: "lamp-1", Name: "Lamp", Type: models.TypeLight, Status: models.StatusOff}
	c, _, _, _ := setup(lamp)

	// Event races ahead of the submission bookkeeping.
	c.applyRequestUpdate(context.Background(), models.RequestUpdateEvent{
		RequestID: "req-raced",
		Status:    models.RequestApproved,
		DeviceID:  "lamp-1",
		NewStatus: models.StatusOn,
	})

	if c.Cache().IsPending("lamp-1") {
		t.Fatal("no marker should exist")
	}
}

func TestDirectUpdateFailureLeavesCacheUntouched(t *testing.T) {
	light := models.Device{ID: "light-1", Name: "Light", Type: models.TypeLight, Status: models.StatusOff}
	c, dg, _, n := setup(light)
	dg.failUpdate = true

	if err := c.Toggle(context.Background(), admin(), "light-1"); err == nil {
		t.Fatal("expected an error from the failed update")
	}
	if d, _ := c.Cache().Device("light-1"); d.Status != models.StatusOff {
		t.Fatalf("expected cached status unchanged, got %s", d.Status)
	}
	if len(n.failures) != 1 {
		t.Fatalf("expected one failure notification, got %v", n.failures)
	}
}

func TestSubmissionFailureRecordsNoMarker(t *testing.T) {
	door := models.Device{ID: "door-1", Name: "Door", Type: models.TypeDoor, Status: models.StatusClose}
	c, _, rg, n := setup(door)
	rg.failSubmit = true

	guest := ActorContext{ID: "u-guest", Role: models.RoleGuest}
	if err := c.Toggle(context.Background(), guest, "door-1"); err == nil {
		t.Fatal("expected an error from the failed submission")
	}
	if c.Cache().IsPending("door-1") {
		t.Fatal("expected no pending marker after failed submission")
	}
	if len(n.failures) != 1 {
		t.Fatalf("expected one failure notification, got %v", n.failures)
	}
}

func TestRefreshSupersedesLocalMarkers(t *testing.T) {
	door := models.Device{ID: "door-1", Name: "Door", Type: models.TypeDoor, Status: models.StatusClose}
	c, _, rg, _ := setup(door)

	guest := ActorContext{ID: "u-guest", Role: models.RoleGuest}
	if err := c.Toggle(context.Background(), guest, "door-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Cache().IsPending("door-1") {
		t.Fatal("expected marker after submission")
	}

	// The server resolved the request out of band; a plain refresh must
	// drop the stale marker.
	rg.resolve("req-1", models.RequestApproved)
	c.Refresh(context.Background())

	if c.Cache().IsPending("door-1") {
		t.Fatal("expected refresh to clear the resolved marker")
	}
}

func TestRunConsumesEventsAndIgnoresTelemetry(t *testing.T) {
	lamp := models.Device{ID: "lamp-1", Name: "Lamp", Type: models.TypeLight, Status: models.StatusOff}
	c, _, _, _ := setup(lamp)

	events := make(chan models.Event, 4)
	events <- models.Event{
		Type:      models.EventSensorTelemetry,
		Telemetry: &models.TelemetryEvent{DeviceID: "temp-1", Value: 21.5},
	}
	events <- models.Event{
		Type:   models.EventDeviceStatusChanged,
		Device: &models.DeviceStatusEvent{DeviceID: "lamp-1", Status: models.StatusOn},
	}
	close(events)

	c.Run(context.Background(), events)

	if d, _ := c.Cache().Device("lamp-1"); d.Status != models.StatusOn {
		t.Fatalf("expected status event applied, got %s", d.Status)
	}
}
