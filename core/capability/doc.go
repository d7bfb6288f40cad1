// Package capability implements the process-wide loader for the vendor map SDK.
//
// The SaaS front end needs the Atlas SDK loaded exactly once per credential,
// no matter how many independent consumers ask for it. The Loader owns the
// load state for the current key, deduplicates concurrent load requests,
// drives the install -> wait -> verify sequence and pushes every state
// transition to its subscribers.
//
// # State machine
//
//	NotLoaded --EnsureLoaded--> Loading --install ok + ready--> Loaded
//	                                    --install err / not ready--> Failed
//	Failed --Reset--> NotLoaded
//
// A load only reaches Loaded when the Readiness predicate confirms the full
// capability surface (base module plus required sub-modules) is present.
// A raw "fetch completed" signal is never enough: the vendor can serve a
// bundle without the geometry sub-module when the credential is not
// provisioned for it, and consumers must see that as a failure.
//
// Failed is sticky. The Loader never retries on its own; recovery is always
// an explicit Reset followed by a new EnsureLoaded, typically via the maps
// feature's retry surface.
//
// # Usage
//
//	ldr := capability.NewLoader(installer, ready, logg, metrics)
//	unsub := ldr.Subscribe(func(st capability.State) { ... })
//	defer unsub()
//	if err := <-ldr.EnsureLoaded(ctx, key); err != nil { ... }
package capability
