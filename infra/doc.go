// Package infra contains technical adapters such as plan stores, metric
// sinks and notifiers. These packages should depend only on the interfaces
// defined in the core packages.
package infra
