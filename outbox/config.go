package outbox

import "time"

const (
	outboxTableName = "_outbox"
	offsetTableName = "_outbox_offset"
)

// WorkerConfig holds the settings of the outbox delivery worker.
// Disable turns the worker off entirely, which is useful for local
// runs without a Kafka broker.
type WorkerConfig struct {
	Disable        bool          `yaml:"disable"                                                  default:"false"`
	ServiceName    string        `yaml:"service_name"    validate:"required_unless=Disable true"`
	Brokers        string        `yaml:"brokers"         validate:"required_unless=Disable true"`
	PollInterval   time.Duration `yaml:"poll_interval"                                            default:"500ms"`
	RetryInterval  time.Duration `yaml:"retry_interval"                                           default:"1s"`
	ResendInterval time.Duration `yaml:"resend_interval"                                          default:"1s"`
	BatchSize      int           `yaml:"batch_size"                                               default:"100"`
}
