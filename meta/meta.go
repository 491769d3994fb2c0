// Package meta tracks request-scoped metadata as typed context values
// and holds the service identity set once at startup.
//
// HTTP middleware injects the request keys at the edge; loggers, alert
// notifiers and error responses read them back without threading extra
// arguments through call chains.
package meta

import (
	"context"

	"github.com/code19m/errx"
)

// ContextKey names a metadata entry stored in a context.
type ContextKey string

const (
	// TraceID correlates log lines, alerts and responses of one request.
	TraceID ContextKey = "trace_id"

	// IPAddress is the client address as reported by the router.
	IPAddress ContextKey = "ip_address"

	// UserAgent is the client's User-Agent header.
	UserAgent ContextKey = "user_agent"

	// RemoteAddr is the peer address of the underlying connection.
	RemoteAddr ContextKey = "remote_addr"

	// Referer is the client's Referer header.
	Referer ContextKey = "referer"

	// ServiceName is the name this process runs under.
	ServiceName ContextKey = "service_name"

	// ServiceVersion is the build version of this process.
	ServiceVersion ContextKey = "service_version"
)

// catalog is the fixed set of keys ExtractMetaFromContext scans for.
var catalog = []ContextKey{ //nolint:gochecknoglobals // fixed key set
	TraceID,
	IPAddress,
	UserAgent,
	RemoteAddr,
	Referer,
	ServiceName,
	ServiceVersion,
}

// InjectMetaToContext returns a context carrying every non-empty entry
// of data. Empty values are dropped so absent metadata stays absent.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v == "" {
			continue
		}
		ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // bounded by the key catalog
	}
	return ctx
}

// ExtractMetaFromContext collects every catalog key present in ctx.
// Keys holding empty or non-string values are left out.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	out := make(map[ContextKey]string, len(catalog))
	for _, k := range catalog {
		if v := Find(ctx, k); v != "" {
			out[k] = v
		}
	}
	return out
}

// Find returns the value stored under key, or an empty string when the
// key is absent or holds a non-string value.
func Find(ctx context.Context, key ContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// ShouldGetMeta returns the value stored under key. Unlike Find it
// fails when the key is absent or holds a non-string value.
func ShouldGetMeta(ctx context.Context, key ContextKey) (string, error) {
	v := ctx.Value(key)
	if v == nil {
		return "", errx.New("meta key not found in context", errx.WithDetails(errx.D{"key": string(key)}))
	}

	s, ok := v.(string)
	if !ok {
		return "", errx.New("meta value type mismatch", errx.WithDetails(errx.D{"key": string(key)}))
	}

	return s, nil
}
