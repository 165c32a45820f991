package types

import "github.com/yeisme/flarecloud/pkg/scheduler"

// HealthResponse GET /health 的响应.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Events  string `json:"events,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JobsResponse GET /scheduler/jobs 的响应.
type JobsResponse struct {
	Jobs []scheduler.JobInfo `json:"jobs"`
}
