package devtools

const (
	ReasonHeadless        = "headless"
	ReasonLogOnly         = "log-only"
	ReasonExtensionAbsent = "extension-absent"
)

// Decision is the outcome of the activation policy for one attach.
type Decision struct {
	Enabled   bool
	Reason    string
	Extension Extension
}

// Decide evaluates whether a store should be bridged. Headless environments,
// log-only configuration and a missing extension each disable bridging.
func Decide(cfg Config, env Environment) Decision {
	if env == nil {
		return Decision{Reason: ReasonExtensionAbsent}
	}
	if env.Headless() {
		return Decision{Reason: ReasonHeadless}
	}
	if cfg.LogOnly {
		return Decision{Reason: ReasonLogOnly}
	}
	ext := env.Extension()
	if ext == nil {
		return Decision{Reason: ReasonExtensionAbsent}
	}
	return Decision{Enabled: true, Extension: ext}
}
