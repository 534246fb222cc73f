package agentic

// Config carries loop tunables. Zero values are replaced by defaults in New.
type Config struct {
	// MaxLoops caps review iterations. Values <= 0 select a hard safety
	// limit at run time rather than unlimited looping.
	MaxLoops int
	// TopK is the per-task retrieval size.
	TopK int
	// RelevanceThreshold excludes fragments whose vector distance is not
	// strictly below it.
	RelevanceThreshold float32
	// PlannerPrompt and ReviewerPrompt allow prompt experiments without
	// rebuilding; placeholders must match the defaults.
	PlannerPrompt  string
	ReviewerPrompt string
}

func defaultConfig() Config {
	return Config{
		MaxLoops:           5,
		TopK:               50,
		RelevanceThreshold: 1.2,
		PlannerPrompt:      DefaultPlannerPrompt,
		ReviewerPrompt:     DefaultReviewerPrompt,
	}
}

// Option customizes a Loop.
type Option func(*Config)

// WithMaxLoops sets the iteration cap.
func WithMaxLoops(n int) Option {
	return func(c *Config) { c.MaxLoops = n }
}

// WithTopK sets the per-task retrieval size.
func WithTopK(k int) Option {
	return func(c *Config) { c.TopK = k }
}

// WithRelevanceThreshold sets the distance cutoff for evidence.
func WithRelevanceThreshold(t float32) Option {
	return func(c *Config) { c.RelevanceThreshold = t }
}

// WithPlannerPrompt overrides the planning prompt.
func WithPlannerPrompt(p string) Option {
	return func(c *Config) {
		if p != "" {
			c.PlannerPrompt = p
		}
	}
}

// WithReviewerPrompt overrides the review prompt.
func WithReviewerPrompt(p string) Option {
	return func(c *Config) {
		if p != "" {
			c.ReviewerPrompt = p
		}
	}
}
