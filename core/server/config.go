package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// BaselineObject is the storage object holding the theoretical export
	// used when a stocktake is created without an explicit object name.
	BaselineObject string `mapstructure:"baseline_object" default:"imports/theoretical.csv"`
	// MappingObject is the storage object holding the two-column
	// (barcode, description) mapping table.
	MappingObject string `mapstructure:"mapping_object" default:"imports/barcodes.csv"`
	// ReportCacheTTLSeconds is the time-to-live for cached variance reports.
	// Zero disables report caching.
	ReportCacheTTLSeconds int `mapstructure:"report_cache_ttl_seconds" default:"30"`
}

// ReportCacheTTL returns the report cache TTL as a duration.
// Negative values are treated as disabled (zero).
func (c Config) ReportCacheTTL() time.Duration {
	if c.ReportCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ReportCacheTTLSeconds) * time.Second
}

