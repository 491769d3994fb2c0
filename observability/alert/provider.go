// Package alert reports internal errors to the Sentinel alerting
// service, which routes them to the on-call channels.
package alert

import "context"

// Provider is the destination for error reports. Implementations must
// tolerate nil details.
type Provider interface {
	// SendError reports one error occurrence: its code, message, the
	// operation it broke, and free-form detail pairs.
	SendError(ctx context.Context, errCode, msg, operation string, details map[string]string) error
}

// NewNoopProvider returns a Provider that discards every report. Used
// in tests and local runs.
func NewNoopProvider() Provider {
	return &noopProvider{}
}

type noopProvider struct{}

func (n *noopProvider) SendError(_ context.Context, _, _, _ string, _ map[string]string) error {
	return nil
}
