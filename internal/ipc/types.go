package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon and scheduler status information. Time
// fields are RFC 3339 in UTC, empty until the first cycle completes.
type StatusResponse struct {
	Running       bool   `json:"running"`
	PID           int    `json:"pid"`
	LockPath      string `json:"lock_path"`
	Phase         string `json:"phase"`
	FilterEnabled bool   `json:"filter_enabled"`
	Sunrise       string `json:"sunrise"`
	Sunset        string `json:"sunset"`
	NextWake      string `json:"next_wake"`
	LastError     string `json:"last_error"`
}

// StopRequest asks the daemon process to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// ReapplyRequest re-issues the current phase's filter command immediately.
type ReapplyRequest struct{}

// ReapplyResponse reports the phase that was applied.
type ReapplyResponse struct {
	Phase         string `json:"phase"`
	FilterEnabled bool   `json:"filter_enabled"`
	Message       string `json:"message"`
}
