package gocas

import (
	"sync/atomic"
)

// Config holds the kernel tunables. The zero value of a field means "use the
// default".
type Config struct {
	// CacheCapacity bounds the process-wide simplifier cache.
	CacheCapacity int `mapstructure:"cache_capacity" yaml:"cache_capacity" json:"cache_capacity"`
	// MaxSimplifyPasses bounds the fixed-point loop of Simplify.
	MaxSimplifyPasses int `mapstructure:"max_simplify_passes" yaml:"max_simplify_passes" json:"max_simplify_passes"`
	// PermutationLimit is the largest commutative operand count matched by
	// trying every permutation; larger sums and products match greedily.
	PermutationLimit int `mapstructure:"permutation_limit" yaml:"permutation_limit" json:"permutation_limit"`
	// SymbolicGCDIterations bounds the Euclidean loop over trees.
	SymbolicGCDIterations int `mapstructure:"symbolic_gcd_iterations" yaml:"symbolic_gcd_iterations" json:"symbolic_gcd_iterations"`
	// IntegrationDepth bounds recursion in the integration cascade.
	IntegrationDepth int `mapstructure:"integration_depth" yaml:"integration_depth" json:"integration_depth"`
}

// DefaultConfig returns the built-in tunables.
func DefaultConfig() Config {
	return Config{
		CacheCapacity:         1000,
		MaxSimplifyPasses:     8,
		PermutationLimit:      6,
		SymbolicGCDIterations: 32,
		IntegrationDepth:      12,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = d.CacheCapacity
	}
	if c.MaxSimplifyPasses <= 0 {
		c.MaxSimplifyPasses = d.MaxSimplifyPasses
	}
	if c.PermutationLimit <= 0 {
		c.PermutationLimit = d.PermutationLimit
	}
	if c.SymbolicGCDIterations <= 0 {
		c.SymbolicGCDIterations = d.SymbolicGCDIterations
	}
	if c.IntegrationDepth <= 0 {
		c.IntegrationDepth = d.IntegrationDepth
	}
	return c
}

var config atomic.Pointer[Config]

func init() {
	c := DefaultConfig()
	config.Store(&c)
}

// CurrentConfig returns the active tunables.
func CurrentConfig() Config { return *config.Load() }

// Configure installs c, filling unset fields with defaults, and resizes the
// simplifier cache. It is meant to be called once at startup.
func Configure(c Config) {
	c = c.withDefaults()
	config.Store(&c)
	simplifyCache.resize(c.CacheCapacity)
	kernelLog().WithField("cache_capacity", c.CacheCapacity).Debug("kernel configured")
}

func cfg() Config { return *config.Load() }
