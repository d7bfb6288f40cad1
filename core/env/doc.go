// Package env models the process-wide hosting environment the vendor SDK is
// installed into.
//
// It tracks two things:
//
//   - Resource references: handles for bundles that are installed or being
//     installed, keyed by descriptor ID. A reference carries a completion
//     signal so that a second installer (or an external actor that installed
//     the same bundle) can attach to the in-flight install instead of
//     starting a duplicate one.
//   - The capability surface: the set of SDK modules currently mounted and
//     usable. Readiness predicates query this surface.
//
// The environment does not decide anything about load policy; it is the
// passive registry the installer and the readiness predicate operate on.
package env
