package handlers

import (
	logRepoPkg "homehub/database/repository/log"
	userRepoPkg "homehub/database/repository/user"
	"homehub/services/device"
	"homehub/services/request"
	"homehub/services/room"
	"homehub/services/schedule"
	"homehub/services/storage"
	"homehub/services/user"
	"homehub/stream"
)

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Devices  *DeviceHandler
	Requests *RequestHandler
	Rooms    *RoomHandler
	Schedule *ScheduleHandler
	Logs     *LogHandler
	Storage  *StorageHandler
	Stream   *StreamHandler

	UserRepo userRepoPkg.UserRepository
}

// NewHandlerBundle wires handlers to their services.
func NewHandlerBundle(
	userSvc user.UserService,
	deviceSvc device.DeviceService,
	requestSvc request.RequestService,
	roomSvc room.RoomService,
	scheduleSvc schedule.ScheduleService,
	storageSvc storage.StorageService,
	logs logRepoPkg.LogRepository,
	userRepo userRepoPkg.UserRepository,
	hub *stream.Hub,
) *HandlerBundle {
	return &HandlerBundle{
		Auth:     &AuthHandler{UserService: userSvc},
		Users:    &UserHandler{UserService: userSvc},
		Devices:  &DeviceHandler{DeviceService: deviceSvc},
		Requests: &RequestHandler{RequestService: requestSvc},
		Rooms:    &RoomHandler{RoomService: roomSvc},
		Schedule: &ScheduleHandler{ScheduleService: scheduleSvc},
		Logs:     &LogHandler{Logs: logs},
		Storage:  &StorageHandler{StorageService: storageSvc, UserRepo: userRepo},
		Stream:   &StreamHandler{Hub: hub},
		UserRepo: userRepo,
	}
}
