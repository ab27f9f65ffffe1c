// Package dispatch resolves a model name to its stored configuration, picks
// the matching provider adapter and performs one upstream generation. It is
// laid out by concern:
//
//   - dispatch.go: Dispatcher and the single-call resolution steps.
//   - fanout.go: FanOut, a bounded parallel run over several model names.
//   - errors.go: Error, its Kind and the IsXxx predicates used by callers.
//   - config.go: Config and package defaults.
//   - metrics.go: Prometheus counters and latency histogram per provider.
//   - tracing.go: OpenTelemetry span helpers.
//
// A Dispatcher holds no per-call state and is safe for concurrent use. It only
// reads from the registry; record ownership stays with the registry package.
package dispatch
