package dto

// Probe statuses reported by the health endpoints.
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthResponse is the body of the liveness and readiness probes. Checks
// maps each registered checker to "ok" or its failure message.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewReadinessResponse summarizes the results of a registry run.
func NewReadinessResponse(results map[string]error, healthy bool) HealthResponse {
	checks := make(map[string]string, len(results))
	for name, err := range results {
		if err != nil {
			checks[name] = err.Error()
			continue
		}
		checks[name] = StatusOK
	}

	status := StatusReady
	if !healthy {
		status = StatusNotReady
	}
	return HealthResponse{Status: status, Checks: checks}
}
