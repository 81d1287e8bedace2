package domain

import "errors"

var (
	ErrInvalidAccion         = errors.New("accion must be ON or OFF")
	ErrDuracionSegRequired   = errors.New("duracion is required for ON commands")
	ErrDuracionSegOutOfRange = errors.New("duracion must be between 1 and 7200 seconds")

	// ErrMQTTDisabled is returned when the broker connection is not configured.
	ErrMQTTDisabled = errors.New("mqtt is disabled")

	// ErrSyncNotBroadcast marks a mutation that was durably persisted but whose
	// schedule snapshot could not be delivered to the controller.
	ErrSyncNotBroadcast = errors.New("schedule saved but sync broadcast failed")
)

// Ad-hoc command actions.
const (
	AccionOn  = "ON"
	AccionOff = "OFF"
)

// MaxCommandDuracionSeg caps an ad-hoc ON command.
const MaxCommandDuracionSeg = 7200
