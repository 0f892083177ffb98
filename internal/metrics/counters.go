// Package metrics holds the process-wide counters reported by the status
// endpoint.
package metrics

import "sync/atomic"

// Counters tracks request and job activity. The zero value is ready to use.
type Counters struct {
	requestsProcessed atomic.Uint64
	activeJobs        atomic.Int64
}

// RequestProcessed records one completed OCR request.
func (c *Counters) RequestProcessed() {
	c.requestsProcessed.Add(1)
}

// RequestsProcessed returns the number of completed OCR requests.
func (c *Counters) RequestsProcessed() uint64 {
	return c.requestsProcessed.Load()
}

// JobStarted records a chapter job starting.
func (c *Counters) JobStarted() {
	c.activeJobs.Add(1)
}

// JobFinished records a chapter job ending, successful or not.
func (c *Counters) JobFinished() {
	c.activeJobs.Add(-1)
}

// ActiveJobs returns the number of chapter jobs currently running.
func (c *Counters) ActiveJobs() int64 {
	return c.activeJobs.Load()
}
