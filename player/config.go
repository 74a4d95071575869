package player

import (
	"time"

	"hearts/belief"
	"hearts/pool"
	"hearts/searcher"
)

// Config drives one decision. The zero value is unusable; start from
// DefaultConfig.
type Config struct {
	Worlds      int
	Simulations int // total across worlds
	Level       belief.Level
	Rule        searcher.DecisionRule
	C1          float64
	C2          float64
	Crossover   int // root visits at which C switches from C1 to C2
	Epsilon     float64
	Seed        uint64
	UseThreads  bool
	Deadline    time.Duration // zero means no deadline
}

// DefaultConfig mirrors the serving defaults: 30 worlds, 10000 total
// simulations, void-aware opponent model, threaded.
func DefaultConfig() Config {
	return Config{
		Worlds:      30,
		Simulations: 10000,
		Level:       belief.VoidAware,
		Rule:        searcher.MaxWeighted,
		C1:          searcher.DefaultExploration,
		C2:          searcher.DefaultExploration,
		Epsilon:     0.1,
		UseThreads:  true,
	}
}

// PerWorld returns the simulation budget of a single world search.
func (c Config) PerWorld() int {
	n := c.Simulations / c.Worlds
	if n < 1 {
		n = 1
	}
	return n
}

type Option func(*Config)

func WithWorlds(worlds int) Option {
	return func(c *Config) {
		if worlds > 0 {
			c.Worlds = worlds
		}
	}
}

func WithSimulations(simulations int) Option {
	return func(c *Config) {
		if simulations > 0 {
			c.Simulations = simulations
		}
	}
}

func WithLevel(level belief.Level) Option {
	return func(c *Config) { c.Level = level }
}

func WithDecisionRule(rule searcher.DecisionRule) Option {
	return func(c *Config) { c.Rule = rule }
}

func WithExploration(c1, c2 float64, crossover int) Option {
	return func(c *Config) {
		c.C1 = c1
		c.C2 = c2
		c.Crossover = crossover
	}
}

func WithEpsilon(epsilon float64) Option {
	return func(c *Config) { c.Epsilon = epsilon }
}

func WithSeed(seed uint64) Option {
	return func(c *Config) { c.Seed = seed }
}

func WithThreads(use bool) Option {
	return func(c *Config) { c.UseThreads = use }
}

func WithDeadline(d time.Duration) Option {
	return func(c *Config) { c.Deadline = d }
}

// Engine owns the process-wide resources decisions share: the worker
// pool. Construct one per process (or per test) and pass it to the
// search players it serves.
type Engine struct {
	pool *pool.Pool
}

// NewEngine starts a pool of the given size; zero or negative sizes
// disable threading for every player built on the engine.
func NewEngine(workers int) *Engine {
	e := &Engine{}
	if workers > 0 {
		e.pool = pool.New(workers)
	}
	return e
}

// Close releases the engine's pool.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}
