package config

import "strings"

// overridable lists the variables that may be shadowed by an environment-prefixed copy.
var overridable = map[string]struct{}{
	"MONGODB_URI":           {},
	"DATABASE_URL":          {},
	"CLIENT_URL":            {},
	"PORT":                  {},
	"STRIPE_WEBHOOK_SECRET": {},
	"RESEND_API_KEY":        {},
	"EMAIL_FROM":            {},
}

// EnvPrefix returns the override prefix for the given NODE_ENV value.
func EnvPrefix(nodeEnv string) string {
	switch strings.ToLower(strings.TrimSpace(nodeEnv)) {
	case "production":
		return "PROD_"
	case "server":
		return "SERVER_"
	default:
		return "DEV_"
	}
}

// EnvCandidates returns the variable names to consult for name, highest precedence first.
func EnvCandidates(nodeEnv, name string) []string {
	if _, ok := overridable[name]; !ok {
		return []string{name}
	}
	return []string{EnvPrefix(nodeEnv) + name, name}
}

// bindingNames flattens candidates for several aliases so every prefixed
// name outranks every canonical one.
func bindingNames(nodeEnv string, names ...string) []string {
	prefixed := make([]string, 0, len(names))
	canonical := make([]string, 0, len(names))
	for _, name := range names {
		candidates := EnvCandidates(nodeEnv, name)
		if len(candidates) == 2 {
			prefixed = append(prefixed, candidates[0])
		}
		canonical = append(canonical, name)
	}
	return append(prefixed, canonical...)
}
