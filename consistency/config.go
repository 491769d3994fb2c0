package consistency

import "time"

// Config holds the settings of the consistency scanner.
// Disable turns the scanner off entirely.
type Config struct {
	Disable  bool          `yaml:"disable"  default:"false"`
	Interval time.Duration `yaml:"interval" default:"15m"`
}
