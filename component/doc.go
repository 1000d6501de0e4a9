// Package component defines the lifecycle and discovery contracts for
// pipeline components, the dependency bundle injected into factories, and
// the factory registry that builds components from configuration.
//
// Components follow a uniform lifecycle:
//   - Initialize() error                  // setup only, no I/O
//   - Start(ctx context.Context) error    // begin processing
//   - Stop(timeout time.Duration) error   // graceful shutdown
//
// Factories receive raw JSON configuration and a Dependencies bundle, parse
// their own config, and return an initialized component. All I/O belongs in
// Start, never in the factory.
package component
