// Package metric provides Prometheus-based metrics collection and an HTTP
// exposition server for pipeline observability.
//
// The package manages a dedicated Prometheus registry holding both core
// platform metrics (pipeline status, event counts, evaluation latency, NATS
// health) and component-registered metrics, and serves them over HTTP.
//
// # Basic Usage
//
//	registry := metric.NewRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Printf("Metrics server error: %v", err)
//	    }
//	}()
//	defer server.Stop()
//
//	registry.Core.RecordEventReceived("auth-pipeline")
//	registry.Core.RecordEventDropped("auth-pipeline", "filtered")
//
// # Core Metrics
//
// All core metrics use the "streamsift" namespace:
//
//   - streamsift_pipeline_status{pipeline="..."}
//   - streamsift_events_received_total{pipeline="..."}
//   - streamsift_events_passed_total{pipeline="..."}
//   - streamsift_events_dropped_total{pipeline="...",reason="..."}
//   - streamsift_pipeline_eval_duration_seconds{pipeline="..."}
//   - streamsift_errors_total{pipeline="...",type="..."}
//   - streamsift_nats_connected, streamsift_nats_rtt_milliseconds,
//     streamsift_nats_reconnects_total
//
// # Component Metrics
//
// Components register their own collectors through the Registrar interface,
// keyed by owner and metric name so duplicates are caught at registration:
//
//	counter := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "filter_publish_failures_total",
//	    Help: "Publish failures after filtering",
//	})
//	if err := registry.Register("filter-processor", "publish_failures", counter); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Registration uses mutex protection; metric recording is lock-free per the
// Prometheus client guarantees. The registry is safe for concurrent use.
package metric
