// Package database manages the connection to the tenant MySQL database.
//
// The database is an optional collaborator: it holds the integration_keys
// table the keyring reads vendor credentials from. When the connection
// fails the service still starts; the keyring then reports the credential
// as unavailable rather than the whole process refusing to boot.
//
// Connections are established through GORM with conservative pool settings
// and an initial ping so a misconfigured DSN surfaces immediately.
package database
