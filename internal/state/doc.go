// Package state holds the domain model the supervisor reconciles against:
// the immutable InstanceConfig snapshot, the ensemble's ServerList, the
// resolved filesystem Paths of the local installation, and the Provider that
// tells the supervisor which ensemble member (if any) this host is.
package state
