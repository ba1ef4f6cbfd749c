// Package provider supplies timestamped samples to a chart, either by
// one-shot pull or by pushing batches from a background poll worker.
package provider

import "github.com/Ckrest/graph-lib/internal/series"

// Provider is the capability contract every data source satisfies.
//
// Fetch returns the best-available current view: the rolling history for
// streaming providers, a freshly queried range for store-backed ones. It
// is bounded and never propagates a per-cycle failure to the caller.
//
// Subscribe registers at most one callback for newly produced batches,
// replacing any previous one. Batches are delivered in production order.
//
// Start and Stop are idempotent. After Stop returns, no further callback
// invocations occur: Stop joins the background worker.
type Provider interface {
	Fetch() []series.Sample
	Subscribe(fn func(batch []series.Sample))
	Unsubscribe()
	Start()
	Stop()
}

// Stater exposes the runtime state of streaming providers.
type Stater interface {
	Running() bool
	LastError() error
}
