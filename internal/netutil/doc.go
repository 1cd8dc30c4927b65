// Package netutil provides network helpers for zksupervisor. Listening
// probes a TCP address, which the supervisor uses to report whether the
// ZooKeeper client port accepts connections.
package netutil
