// Package server holds the HTTP server configuration.
//
// The server itself is assembled in cmd/start.go; this package only carries
// the settings (listen port, API key) so core/config can bind them.
package server
