// Package storage provides the S3/MinIO-backed object store.
//
// The Map Manager uses it as the durable cache for vendor SDK bundle
// manifests: a successful vendor fetch is written back under sdk/cache/ so
// a restart (or a second instance) does not hit the vendor again, and a
// failed install removes its cache entry so a poisoned manifest cannot
// survive a retry.
//
// The Client interface wraps the subset of MinIO operations the service
// needs; core/storage/mocks carries a testify mock of it for tests.
package storage
