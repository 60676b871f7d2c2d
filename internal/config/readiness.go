package config

// CheckState describes the readiness of one integration.
type CheckState string

const (
	// StateConfigured means every variable of the integration is present.
	StateConfigured CheckState = "configured"
	// StateMissing means a required integration has absent variables.
	StateMissing CheckState = "missing"
	// StatePartial means an optional integration is half-configured.
	StatePartial CheckState = "partial"
	// StateOptional means an optional integration is entirely unset.
	StateOptional CheckState = "optional"
)

// Check is the readiness report for one named integration.
type Check struct {
	Name     string     `json:"name"`
	Required bool       `json:"required"`
	State    CheckState `json:"state"`
	Missing  []string   `json:"missing,omitempty"`
}

// integration names one external dependency and the variables it needs.
type integration struct {
	name     string
	required bool
	vars     []string
	values   func(c *Config) []string
}

// integrations is the fixed readiness table. Order is the report order.
var integrations = []integration{
	{
		name:     "database",
		required: true,
		vars:     []string{"DATABASE_URL"},
		values:   func(c *Config) []string { return []string{c.DatabaseURL} },
	},
	{
		name:     "sessions",
		required: true,
		vars:     []string{"REDIS_URL", "AUTH_SECRET"},
		values:   func(c *Config) []string { return []string{c.RedisURL, c.AuthSecret} },
	},
	{
		name:     "google-oauth",
		required: false,
		vars:     []string{"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET"},
		values:   func(c *Config) []string { return []string{c.GoogleClientID, c.GoogleClientSecret} },
	},
	{
		name:     "stripe",
		required: false,
		vars:     []string{"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET"},
		values:   func(c *Config) []string { return []string{c.StripeSecretKey, c.StripeWebhookSecret} },
	},
	{
		name:     "neon",
		required: false,
		vars:     []string{"NEON_API_KEY"},
		values:   func(c *Config) []string { return []string{c.NeonAPIKey} },
	},
}

// Readiness evaluates every integration in the table.
func (c *Config) Readiness() []Check {
	checks := make([]Check, 0, len(integrations))

	for _, in := range integrations {
		values := in.values(c)
		var missing []string
		for i, v := range values {
			if v == "" {
				missing = append(missing, in.vars[i])
			}
		}

		state := StateConfigured
		switch {
		case len(missing) == 0:
			state = StateConfigured
		case in.required:
			state = StateMissing
		case len(missing) == len(values):
			state = StateOptional
		default:
			state = StatePartial
		}

		checks = append(checks, Check{
			Name:     in.name,
			Required: in.required,
			State:    state,
			Missing:  missing,
		})
	}

	return checks
}

// Ready returns true only if every required integration is configured.
// The process must not serve traffic while Ready is false.
func (c *Config) Ready() bool {
	for _, check := range c.Readiness() {
		if check.Required && check.State != StateConfigured {
			return false
		}
	}
	return true
}
