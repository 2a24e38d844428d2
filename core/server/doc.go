// Package server holds the HTTP server configuration.
//
// While the cmd package handles server startup, this package defines the
// configuration structure for server settings: the listen port, the API key,
// the default import object names, and the report cache TTL.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by the stocktake feature to locate import objects.
package server
