// Package locator finds the pid of the running ZooKeeper server by asking a
// JVM process listing utility (jps by default) and scanning its output for
// the server's main class.
package locator
