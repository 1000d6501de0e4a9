// Package retry provides exponential backoff retry for transient failures.
//
// # Overview
//
// Retry decisions follow the error classification in the errors package:
// transient and unclassified errors retry until the policy is exhausted,
// while invalid and fatal errors return immediately. This keeps callers from
// re-attempting directive build errors or bad configuration.
//
// # Policy Presets
//
//   - DefaultPolicy(): 3 attempts, 100ms-5s delay (normal operations)
//   - Startup(): 10 attempts, 50ms-1s delay (component startup)
//   - Persistent(): 30 attempts, 200ms-10s delay (critical resources)
//
// # Usage
//
// Basic retry with defaults:
//
//	err := retry.Do(ctx, retry.DefaultPolicy(), func() error {
//	    return client.Connect()
//	})
//
// Retry with result:
//
//	sub, err := retry.DoWithResult(ctx, retry.Persistent(), func() (*nats.Subscription, error) {
//	    return conn.SubscribeSync(subject)
//	})
//
// # Context Cancellation
//
// All retry operations respect context cancellation and stop immediately,
// whether cancellation arrives during the operation or during a backoff
// delay.
//
// # Thread Safety
//
// All functions are safe for concurrent use. The jitter mechanism uses a
// thread-safe random source to avoid contention.
package retry
