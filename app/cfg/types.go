package cfg

import "time"

type Cfg struct {
	// Sources and profiles
	SourcesDir     string
	ProfilesFile   string
	DefaultProfile string

	// Ranking
	MinTargets       int
	PrivilegedOrigin string
	QuotaFloor       int

	// Aggregation
	AggregateWorkers int
	AggregateTimeout time.Duration

	// Application configuration
	Port         string
	RunHistory   int
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
