// Package internaldefs holds the shared metric name and help definitions
// used by the Prometheus and OTel exporters. It exists so the two exporters
// cannot drift apart; nothing outside metrics/export should import it.
package internaldefs
