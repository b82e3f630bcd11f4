package configs

import "time"

// Automation configures the rule engine and the background scheduler
// loop. AutoApply bypasses operator approval and applies triggered
// actions immediately. SuppressDuplicates skips a rule that still has an
// unresolved pending action outstanding; it defaults to false so that
// re-ingesting identical metrics re-triggers, matching the historical
// behaviour of the platform.
type Automation struct {
	// TickInterval is how often the background scheduler loop runs.
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"5m"`
	// EnableScheduler starts the background scheduler loop on boot. When
	// disabled, ticks only happen on demand via the HTTP endpoint.
	EnableScheduler bool `env:"ENABLE_SCHEDULER" envDefault:"true"`
	// AutoApply applies rule- and schedule-triggered actions without
	// operator approval.
	AutoApply bool `env:"AUTO_APPLY" envDefault:"false"`
	// SuppressDuplicates suppresses re-triggering of a rule while one of
	// its actions is still pending.
	SuppressDuplicates bool `env:"SUPPRESS_DUPLICATES" envDefault:"false"`
}
