// Package materialize turns the abstract instance configuration into the
// files ZooKeeper reads at startup: myid in the data directory, and zoo.cfg,
// java.env and log4j.properties in the config directory.
//
// File names and property keys must match what ZooKeeper expects exactly.
package materialize
