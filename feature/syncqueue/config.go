package syncqueue

// Config holds configuration for the device-local offline queue.
type Config struct {
	// Path is the local SQLite database file backing the queue.
	Path string `mapstructure:"path" default:"stocktake-queue.db"`
	// ServerURL is the base URL of the stocktake server.
	ServerURL string `mapstructure:"server_url" default:"http://localhost:8080"`
	// ApiKey is sent on sync requests when the server requires one.
	ApiKey string `mapstructure:"api_key" default:""`
	// Device identifies this device in recorded counts.
	Device string `mapstructure:"device" default:""`
	// Location is the default counting location for recorded counts.
	Location string `mapstructure:"location" default:""`
	// TimeoutSeconds is the per-request sync timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
}
