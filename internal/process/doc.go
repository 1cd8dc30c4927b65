// Package process launches and tracks the external commands the supervisor
// depends on: the ZooKeeper control script and the transaction log purge.
//
// Monitor keeps one child per ProcessType, forwards captured output to the
// activity log, and reports how each child exited. Run executes one-shot
// commands and returns their exit code. WaitReady polls a readiness check
// until it succeeds or times out.
package process
