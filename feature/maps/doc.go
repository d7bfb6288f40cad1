// Package maps exposes the map capability to the front end.
//
// The heavy lifting happens in core/capability; this package is the
// per-consumer binding on top of it. The Adapter resolves the vendor
// credential through the keyring, triggers loading when a key is available,
// mirrors every loader transition into a simple status snapshot and offers
// an explicit retry. The handler publishes exactly that surface:
//
//   - GET  /maps/status  : current status (is_loaded, load/key errors)
//   - POST /maps/retry   : reset + fresh load attempt, returns the outcome
//   - GET  /maps/modules : the SDK modules currently mounted
//
// "No credential yet" and "load failed" are reported through separate
// fields; the front end renders very different remediation for the two.
package maps
