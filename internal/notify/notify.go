// Package notify carries user-facing, non-fatal notifications out of the
// flows. The flows never fail the process over these; the host surface decides
// how to present them.
package notify

import "log/slog"

type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// SlogNotifier is the default sink when no UI channel is attached.
type SlogNotifier struct{}

func (SlogNotifier) Info(msg string)    { slog.Info("notice", "message", msg) }
func (SlogNotifier) Success(msg string) { slog.Info("success", "message", msg) }
func (SlogNotifier) Error(msg string)   { slog.Warn("user error", "message", msg) }

// Recorder collects notifications for inspection, primarily in tests and in
// request-scoped handlers that return them to the caller.
type Recorder struct {
	Infos     []string
	Successes []string
	Errors    []string
}

func (r *Recorder) Info(msg string)    { r.Infos = append(r.Infos, msg) }
func (r *Recorder) Success(msg string) { r.Successes = append(r.Successes, msg) }
func (r *Recorder) Error(msg string)   { r.Errors = append(r.Errors, msg) }
