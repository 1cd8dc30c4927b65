// Package escalation implements the bounded kill-and-confirm loop used to
// stop ZooKeeper: one graceful stop through the control script, then forced
// kills, re-checking the process table after each attempt with a growing
// wait.
package escalation
