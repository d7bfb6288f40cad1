// Package sdk installs the Atlas vendor SDK into the hosting environment.
//
// The installer is the only component that touches the vendor: it builds a
// deterministic descriptor from the credential, adopts an equivalent
// resource reference when one is already present (adopt-or-create), fetches
// the bundle manifest (MinIO cache first, vendor CDN second), mounts the
// declared modules onto the environment surface and verifies the required
// modules actually arrived.
//
// A completed fetch whose manifest lacks a required module is a failure
// ("loaded but incomplete"), and the installer removes the reference and the
// cached manifest so the next attempt starts clean.
//
// Load policy (dedup, retry, state) lives in core/capability; this package
// only performs one attempt when asked.
package sdk
