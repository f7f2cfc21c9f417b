// Package prometheus exports session metrics in Prometheus text exposition
// format via an [net/http.Handler] or a plain Render string.
package prometheus
