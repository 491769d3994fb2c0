package alert

import "time"

// Config locates the Sentinel service alerts are reported to.
type Config struct {
	// Disable drops all alerts without connecting anywhere.
	Disable bool `yaml:"disable" default:"false"`

	// SentinelHost is the Sentinel service host. Required unless
	// Disable is set.
	SentinelHost string `yaml:"sentinel_host" validate:"required_unless=Disable true"`

	// SentinelPort is the Sentinel service port. Required unless
	// Disable is set.
	SentinelPort int `yaml:"sentinel_port" validate:"required_unless=Disable true"`

	// SendTimeout bounds the delivery of a single report.
	SendTimeout time.Duration `yaml:"send_timeout" default:"3s"`
}
