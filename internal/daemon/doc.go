// Package daemon hosts the long-running engine process: the single-instance
// file lock, the HTTP API server, and lifecycle management. Handlers delegate
// to the api.Service and translate sentinel errors into status codes.
package daemon
