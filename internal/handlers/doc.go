// Package handlers implements the HTTP API of the conversion service.
//
// Endpoints:
//
//	POST /api/convert/{to}  multipart upload, returns the converted file
//	GET  /api/tools         the active conversion tool manifest
//	GET  /api/formats       supported format tags grouped by family
//	GET  /health            detailed health status
//	GET  /healthz, /livez   liveness probes
//	GET  /readyz            readiness probe
//	GET  /version           build information
package handlers
