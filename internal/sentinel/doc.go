// Package sentinel provides a string-backed error type so that zksupervisor's
// sentinel errors can be declared as constants instead of mutable variables.
// Values remain comparable, so errors.Is matches them through wrapped chains.
package sentinel
