package tracing

import "time"

const reconnectionPeriod = 30 * time.Second

// Config locates the OTLP collector and sets the sampling policy.
type Config struct {
	// Disable turns tracing off entirely; no spans are collected or
	// exported.
	Disable bool `yaml:"disable" default:"false"`

	// SampleRate is the fraction of traces to sample, from 0.0
	// (none) to 1.0 (all).
	SampleRate float64 `yaml:"sample_rate" default:"1"`

	// ExporterHost is the OTLP collector host.
	ExporterHost string `yaml:"exporter_host" validate:"required"`

	// ExporterPort is the OTLP collector gRPC port.
	ExporterPort int `yaml:"exporter_port" validate:"required"`

	// Tags are extra resource attributes stamped on every span, for
	// environment or deployment metadata.
	Tags map[string]string `yaml:"tags"`
}
