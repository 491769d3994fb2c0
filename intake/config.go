package intake

// Config holds the settings of the intake orchestrator.
type Config struct {
	// MaxParallelUploads bounds how many files of a single upload batch
	// are processed concurrently.
	MaxParallelUploads int `yaml:"max_parallel_uploads" validate:"min=1" default:"4"`

	// EventsTopic is the Kafka topic file lifecycle events are
	// delivered to through the outbox.
	EventsTopic string `yaml:"events_topic" default:"geodepot.file-events"`
}
