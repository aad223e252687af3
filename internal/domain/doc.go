// Package domain holds the error vocabulary shared by the gateway's layers.
// Outbound adapters wrap transport failures in these sentinels with %w so
// inbound adapters can map them to HTTP statuses without importing any
// client library.
package domain
