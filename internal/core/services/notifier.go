package services

import "time"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

const (
	SuccessNotificationDuration = 1500 * time.Millisecond
	InfoNotificationDuration    = 2500 * time.Millisecond
	ErrorNotificationDuration   = 4 * time.Second
)

type Notifier interface {
	Notify(message string, severity Severity, duration time.Duration)
}
