// Package api defines the wire types of the contentgen HTTP API.
//
// Endpoints:
//
//	POST /v1/generate            generate platform content
//	GET  /v1/models?provider=&free=  list provider models
//	GET  /health, /healthz, /ready   health probes
//	GET  /version                build information
//
// The backend API key travels in the X-Provider-Key header.
package api
