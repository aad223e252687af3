// Package ports defines interfaces between layers in the hexagonal architecture.
// Inbound adapters (HTTP handlers) depend on these interfaces; outbound
// adapters (the upstream forwarder, health-reporting clients) implement them.
package ports
