package handler

const (
	errInternalServer  = "Internal server error"
	errAgendaNotFound  = "Agenda not found"
	errAgendaOverlap   = "Agenda overlaps an existing one in the same zone"
	errNodeIDMismatch  = "Node id in path and payload do not match"
	errZonaNotFound    = "Zone not found"
	errMQTTUnavailable = "MQTT broker unavailable"

	warnSyncNotSent = "Saved, but the schedule sync could not be broadcast"
)
