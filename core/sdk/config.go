package sdk

// Config holds configuration for the vendor SDK endpoint.
type Config struct {
	// BaseURL is the vendor CDN endpoint the SDK bundle is fetched from.
	BaseURL string `mapstructure:"base_url" default:"https://cdn.atlas.example/v3/bundle"`
	// TimeoutSeconds is the vendor HTTP timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
	// AdoptWaitSeconds bounds how long an install waits on a bundle
	// reference someone else is already installing.
	AdoptWaitSeconds int `mapstructure:"adopt_wait_seconds" default:"30"`
}
