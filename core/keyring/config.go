package keyring

// Config holds configuration for the credential source.
type Config struct {
	// Source selects the provider (static, database, remote).
	Source string `mapstructure:"source" default:"static"`
	// Key is the vendor API key when Source is static.
	Key string `mapstructure:"key" default:""`
	// URL is the account-service endpoint when Source is remote.
	URL string `mapstructure:"url" default:""`
	// Vendor is the integration name keys are stored under.
	Vendor string `mapstructure:"vendor" default:"atlas"`
}

const (
	SourceStatic   = "static"
	SourceDatabase = "database"
	SourceRemote   = "remote"
)

// IsValidSource checks if the configured source is valid.
func (c Config) IsValidSource() bool {
	switch c.Source {
	case SourceStatic, SourceDatabase, SourceRemote:
		return true
	default:
		return false
	}
}
