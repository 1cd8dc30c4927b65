// Package hostlock serializes lifecycle commands on one host with an
// exclusive file lock, so two invocations cannot start and kill ZooKeeper at
// the same time.
package hostlock
