// Package health aggregates per-pipeline health into a single process-level
// status and serves it over HTTP for liveness probes.
//
// Pipelines report component.HealthStatus; the monitor converts each report
// into a leveled Status, keeps the latest snapshot per pipeline, and
// aggregates to the worst level observed. Error messages are sanitized
// before they leave the process.
package health
