// Package middleware provides HTTP middleware for the conversion service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Response compression (gzip) for JSON and text payloads
//   - Prometheus request metrics with bounded path cardinality
package middleware
