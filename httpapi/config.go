package httpapi

// Config holds settings of the public HTTP API.
type Config struct {
	// PublicBaseURL is the address clients reach the API under. File URLs
	// in responses are built on it. Trailing slashes are tolerated.
	PublicBaseURL string `yaml:"public_base_url" validate:"required,url"`
}
