package rankstartupmatches

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`

	Concurrency int `mapstructure:"concurrency"`
	// MaxResults caps the ranking regardless of the limit a job asks for.
	MaxResults int `mapstructure:"max_results"`
	// CandidatePoolSize is how many startups are pulled from search when
	// the job does not supply its own.
	CandidatePoolSize int `mapstructure:"candidate_pool_size"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:           true,
		MaxJobsActive:     2,
		Timeout:           60 * time.Second,
		Concurrency:       8,
		MaxResults:        50,
		CandidatePoolSize: 200,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive")
	}
	if c.CandidatePoolSize < c.MaxResults {
		return fmt.Errorf("candidate_pool_size must be at least max_results")
	}
	return nil
}
