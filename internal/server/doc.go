// Package server manages the lifecycle of the HTTP listeners: background
// start, graceful shutdown and SIGINT/SIGTERM handling.
package server
