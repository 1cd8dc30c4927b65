// Command zksupervisor starts, stops and maintains the local ZooKeeper
// server.
package main

import "github.com/giantswarm/zksupervisor/internal/cli"

func main() {
	cli.Execute()
}
