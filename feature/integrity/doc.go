// Package integrity provides infrastructure health checks for the loader's
// collaborators.
//
// The capability loader only reports "failed"; these checks tell an operator
// why. They validate the storage bucket the SDK cache lives in, the cached
// bundle manifests themselves and the database table the keyring reads
// credentials from.
//
// # Checks Provided
//
//   - Structure: the required folder layout exists in the storage bucket (e.g. /sdk/cache).
//   - Cache: every cached bundle manifest parses and ships the required modules.
//   - Database: the integration_keys table is reachable and holds a key for the vendor.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/cache : Runs cache check.
//   - GET /integrity/database : Runs database check.
package integrity
