package analytics

// Config holds the analytics engine configuration.
type Config struct {
	// Timezone is the IANA location used to assign timestamps to calendar months.
	Timezone string `mapstructure:"timezone"`
	// FinishInactivityDays is how long a student must go without a completed lesson to count as finished.
	FinishInactivityDays int `mapstructure:"finish_inactivity_days"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		Timezone:             "Europe/London",
		FinishInactivityDays: 28,
	}
}
