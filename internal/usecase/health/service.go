package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates the session store answers.
	Healthy Status = "ok"
	// Unhealthy indicates the session store is unreachable: no page can work without it.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks. The product-search backend is not probed: it has no
// free endpoint and a failing search already surfaces as a toast.
type Service struct {
	db DBPinger
}

// New creates a Service.
func New(db DBPinger) *Service {
	return &Service{db: db}
}

// Check pings the session store.
func (s *Service) Check(ctx context.Context) Report {
	if err := s.db.Ping(ctx); err != nil {
		return Report{Status: Unhealthy, Checks: map[string]CheckResult{"database": CheckError}}
	}
	return Report{Status: Healthy, Checks: map[string]CheckResult{"database": CheckOK}}
}
