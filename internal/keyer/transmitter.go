package keyer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dit/internal/logging"
	"dit/internal/notifications"
)

// Request is one job handed to a transmitter.
type Request struct {
	JobID int64
	Text  string
	Speed int
	Code  string
}

// Ack is the transmitter's confirmation, stored verbatim on the job.
type Ack struct {
	OK    bool     `json:"ok"`
	Code  string   `json:"code"`
	Speed int      `json:"speed"`
	Via   []string `json:"via,omitempty"`
}

// Transmitter delivers a Morse line somewhere.
type Transmitter interface {
	Name() string
	Transmit(ctx context.Context, req Request) (Ack, error)
}

func ackFor(name string, req Request) Ack {
	return Ack{OK: true, Code: req.Code, Speed: req.Speed, Via: []string{name}}
}

// LogTransmitter writes the code line to the log.
type LogTransmitter struct {
	logger *slog.Logger
}

// NewLogTransmitter returns a transmitter that logs through logger.
func NewLogTransmitter(logger *slog.Logger) *LogTransmitter {
	return &LogTransmitter{logger: logging.NewComponentLogger(logger, "keyer")}
}

func (t *LogTransmitter) Name() string { return "log" }

func (t *LogTransmitter) Transmit(ctx context.Context, req Request) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}
	logging.WithContext(ctx, t.logger).Info("morse line",
		logging.String(logging.FieldEventType, "morse_line"),
		logging.Speed(req.Speed),
		logging.String("text", req.Text),
		logging.Code(req.Code),
	)
	return ackFor(t.Name(), req), nil
}

// ConfigError reports a transmitter that cannot run with the current
// configuration. Jobs failing with it are not retried.
type ConfigError struct {
	Reason string
}

func (e ConfigError) Error() string { return e.Reason }

func (ConfigError) ErrorKind() string { return "configuration" }

// NotifyTransmitter pushes the code line as a notification.
type NotifyTransmitter struct {
	notifier notifications.Service
}

// NewNotifyTransmitter wraps a notification service.
func NewNotifyTransmitter(notifier notifications.Service) *NotifyTransmitter {
	return &NotifyTransmitter{notifier: notifier}
}

func (t *NotifyTransmitter) Name() string { return "ntfy" }

func (t *NotifyTransmitter) Transmit(ctx context.Context, req Request) (Ack, error) {
	if t.notifier == nil {
		return Ack{}, ConfigError{Reason: "ntfy transmitter has no notifier"}
	}
	err := t.notifier.Publish(ctx, notifications.EventCodeLine, notifications.Payload{
		"text":  req.Text,
		"code":  req.Code,
		"speed": req.Speed,
	})
	if err != nil {
		return Ack{}, fmt.Errorf("publish code line: %w", err)
	}
	return ackFor(t.Name(), req), nil
}

type multi struct {
	transmitters []Transmitter
}

// Multi sends through every transmitter in order. All of them run even when
// one fails, and any failures are joined into the returned error.
func Multi(transmitters ...Transmitter) Transmitter {
	live := make([]Transmitter, 0, len(transmitters))
	for _, t := range transmitters {
		if t != nil {
			live = append(live, t)
		}
	}
	if len(live) == 1 {
		return live[0]
	}
	return &multi{transmitters: live}
}

func (m *multi) Name() string {
	names := make([]string, 0, len(m.transmitters))
	for _, t := range m.transmitters {
		names = append(names, t.Name())
	}
	return strings.Join(names, "+")
}

func (m *multi) Transmit(ctx context.Context, req Request) (Ack, error) {
	if len(m.transmitters) == 0 {
		return Ack{}, ConfigError{Reason: "no transmitters configured"}
	}
	ack := Ack{Code: req.Code, Speed: req.Speed}
	var errs []error
	for _, t := range m.transmitters {
		got, err := t.Transmit(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			continue
		}
		ack.Via = append(ack.Via, got.Via...)
	}
	if err := errors.Join(errs...); err != nil {
		return Ack{}, err
	}
	ack.OK = true
	return ack, nil
}
