package diskstore

// Config defines the configuration options for the local disk store.
type Config struct {
	// RootDir is the directory under which all artifacts are stored.
	RootDir string `yaml:"root_dir" validate:"required"`

	// MaxConcurrentOps bounds the number of filesystem operations
	// running at the same time.
	MaxConcurrentOps int `yaml:"max_concurrent_ops" default:"64" validate:"min=1"`
}
