package peek

// allowedEnvs are the deployment environments in which peek is active.
var allowedEnvs = [...]string{"development", "staging"}

// AllowedEnvs returns the deployment environments in which peek is active.
func AllowedEnvs() []string {
	out := make([]string, len(allowedEnvs))
	copy(out, allowedEnvs[:])
	return out
}

// AllowedEnv reports whether env is one of AllowedEnvs.
func AllowedEnv(env string) bool {
	for _, allowed := range allowedEnvs {
		if env == allowed {
			return true
		}
	}
	return false
}
