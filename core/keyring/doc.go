// Package keyring supplies the vendor credential the SDK loader needs.
//
// A Provider either returns the key, an empty string when no key is
// provisioned yet (the loader simply waits; this is not a failure), or an
// error when the lookup itself broke. Consumers surface the two cases
// through separate fields so the front end can tell "no credential" apart
// from "load failed".
//
// # Providers
//
//   - StaticProvider: key from configuration / environment.
//   - DBProvider: key from the tenant's integration_keys table.
//   - RemoteProvider: key from the account service over HTTP, with
//     exponential backoff on transient errors.
package keyring
