// Package temporal hosts elicitations inside Temporal workflows.
//
// Two styles are offered:
//
//   - Elicit waits inside the workflow for an answer delivered by signal.
//     The pending request is exposed through the "elicit.pending" query and
//     answered with SendAnswer, typically from a different process.
//   - ExecuteElicitation runs the prompt in an activity backed by an
//     elicitation.Requester. The answer is recorded in workflow history, so
//     replaying the workflow never prompts the user again.
//
// Both resolve workflow cancellation to elicitation.Cancelled and apply the
// configured timeout policy when the wait times out. Accepted content is
// validated against the request schema before it is returned.
//
// NewClient and NewWorker build clients and workers with OpenTelemetry
// tracing and metrics installed and the SDK logger bridged onto log/slog.
package temporal
