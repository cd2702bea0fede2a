// Package notify routes user facing alerts raised by the scan config flow.
package notify

import (
	"sync"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=notifier.go -destination=fake/zz_generated_notifier_mock.go -package=fake

type Notifier interface {
	FromError(title, message string)
}

type logNotifier struct {
	logger logrus.FieldLogger
}

// NewLogNotifier reports notifications as error level log entries.
func NewLogNotifier(logger logrus.FieldLogger) Notifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &logNotifier{logger: logger}
}

func (l *logNotifier) FromError(title, message string) {
	l.logger.WithField("title", title).Error(message)
}

type Notification struct {
	Title   string
	Message string
}

// Recorder keeps every notification it receives and optionally forwards them.
type Recorder struct {
	sync.Mutex
	next          Notifier
	notifications []Notification
}

func NewRecorder(next Notifier) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) FromError(title, message string) {
	r.Lock()
	r.notifications = append(r.notifications, Notification{Title: title, Message: message})
	r.Unlock()
	if r.next != nil {
		r.next.FromError(title, message)
	}
}

func (r *Recorder) Notifications() []Notification {
	r.Lock()
	defer r.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}
