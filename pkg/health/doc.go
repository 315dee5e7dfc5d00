// Package health supervises provider reachability.
//
// A Monitor owns the per-provider health records: it probes every
// constructed adapter on a fixed interval with bounded linear-backoff
// retries, classifies each one as healthy, degraded, critical, or
// offline, and folds the records into a SystemHealth aggregate with
// operator recommendations. Records are written only by the monitor;
// every accessor returns copies, so readers never share state with the
// check loop.
//
// The monitor never lets a probe failure escape its loop. Outcomes land
// in the records, in prometheus series, in a best-effort JSON snapshot
// under the user config dir, and, when a history sink is attached, in
// the SQLite history store.
package health
