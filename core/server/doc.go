// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines
// the settings it reads: the listen port, the API key, the request body limit
// (which bounds an upload batch) and the graceful shutdown timeout.
package server
