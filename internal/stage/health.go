package stage

// Health reports whether a stage could run with the current configuration
// and inputs.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy reports a stage as ready.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy reports a stage as not ready; detail says what is missing.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}

// Summary renders the health for tables and logs.
func (h Health) Summary() string {
	switch {
	case h.Ready:
		return "ready"
	case h.Detail == "":
		return "not ready"
	default:
		return "not ready: " + h.Detail
	}
}
