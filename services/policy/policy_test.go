package policy

import (
	"testing"

	"homehub/models"
)

func device(id string, t models.DeviceType, restricted bool) models.Device {
	return models.Device{ID: id, Name: id, Type: t, IsRestricted: restricted}
}

func TestAdminAlwaysActsDirectly(t *testing.T) {
	devices := []models.Device{
		device("lamp", models.TypeLight, false),
		device("front-door", models.TypeDoor, true),
		device("pir", models.TypePIRSensor, true),
	}
	for _, d := range devices {
		if !CanActDirectly(models.RoleAdmin, d, nil) {
			t.Fatalf("expected ADMIN to act directly on %s", d.ID)
		}
	}
}

func TestGuestNeverActsDirectly(t *testing.T) {
	allowed := NewAccessSet("lamp")
	if CanActDirectly(models.RoleGuest, device("lamp", models.TypeLight, false), allowed) {
		t.Fatal("expected GUEST to be denied even for an allowed unrestricted device")
	}
}

func TestRestrictedDeviceForcesRequest(t *testing.T) {
	d := device("heater", models.TypeOther, true)
	allowed := NewAccessSet("heater")
	for _, role := range []models.Role{models.RoleAdult, models.RoleChild} {
		if CanActDirectly(role, d, allowed) {
			t.Fatalf("expected %s to be denied on a restricted device", role)
		}
	}
}

func TestAllowedSetMembershipRequired(t *testing.T) {
	d := device("lamp", models.TypeLight, false)
	if CanActDirectly(models.RoleAdult, d, NewAccessSet("other-device")) {
		t.Fatal("expected ADULT to be denied outside the allowed set")
	}
	if !CanActDirectly(models.RoleAdult, d, NewAccessSet("lamp")) {
		t.Fatal("expected ADULT to act directly inside the allowed set")
	}
	if !CanActDirectly(models.RoleChild, d, NewAccessSet("lamp")) {
		t.Fatal("expected CHILD to act directly inside the allowed set")
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	d := device("lamp", models.TypeLight, false)
	if CanActDirectly(models.Role("OWNER"), d, NewAccessSet("lamp")) {
		t.Fatal("expected unknown role to be denied")
	}
}

func TestFlipPerCategory(t *testing.T) {
	cases := []struct {
		devType models.DeviceType
		from    models.DeviceStatus
		to      models.DeviceStatus
	}{
		{models.TypeDoor, models.StatusOpen, models.StatusClose},
		{models.TypeDoor, models.StatusClose, models.StatusOpen},
		{models.TypeGate, models.StatusClose, models.StatusOpen},
		{models.TypePIRSensor, models.StatusActive, models.StatusInactive},
		{models.TypeGasSensor, models.StatusInactive, models.StatusActive},
		{models.TypeLight, models.StatusOn, models.StatusOff},
		{models.TypeFan, models.StatusOff, models.StatusOn},
		{models.TypeAwning, models.StatusOff, models.StatusOn},
	}
	for _, tc := range cases {
		if got := Flip(tc.devType, tc.from); got != tc.to {
			t.Fatalf("Flip(%s, %s) = %s, want %s", tc.devType, tc.from, got, tc.to)
		}
	}
}

func TestFlipIsInvolution(t *testing.T) {
	types := []models.DeviceType{
		models.TypeLight, models.TypeDoor, models.TypeGate,
		models.TypeHumiditySensor, models.TypeRelay, models.TypeOther,
	}
	statuses := []models.DeviceStatus{
		models.StatusOn, models.StatusOff,
		models.StatusOpen, models.StatusClose,
		models.StatusActive, models.StatusInactive,
	}
	for _, dt := range types {
		for _, s := range statuses {
			once := Flip(dt, s)
			twice := Flip(dt, once)
			if Flip(dt, twice) != once {
				t.Fatalf("Flip not an involution for (%s, %s)", dt, s)
			}
			if !ValidStatus(dt, once) {
				t.Fatalf("Flip(%s, %s) = %s escapes the category domain", dt, s, once)
			}
		}
	}
}

func TestValidStatusDomains(t *testing.T) {
	if ValidStatus(models.TypeDoor, models.StatusOn) {
		t.Fatal("ON is not valid for a door")
	}
	if ValidStatus(models.TypeLight, models.StatusOpen) {
		t.Fatal("OPEN is not valid for a light")
	}
	if ValidStatus(models.TypeRainSensor, models.StatusOff) {
		t.Fatal("OFF is not valid for a sensor")
	}
	if !ValidStatus(models.TypeGate, models.StatusClose) {
		t.Fatal("CLOSE should be valid for a gate")
	}
}

func TestStatusForAction(t *testing.T) {
	if got := StatusForAction(models.TypeDoor, models.StatusClose, models.ActionOn); got != models.StatusOpen {
		t.Fatalf("ON on a door should map to OPEN, got %s", got)
	}
	if got := StatusForAction(models.TypePIRSensor, models.StatusActive, models.ActionOff); got != models.StatusInactive {
		t.Fatalf("OFF on a sensor should map to INACTIVE, got %s", got)
	}
	if got := StatusForAction(models.TypeLight, models.StatusOn, models.ActionToggle); got != models.StatusOff {
		t.Fatalf("TOGGLE on a lit light should map to OFF, got %s", got)
	}
}
