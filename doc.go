// Package zksupervisor supervises the ZooKeeper server running on the local
// host.
//
// It renders ZooKeeper's configuration files from a configuration store and
// the host's ensemble role, starts the server through its control script,
// stops it with a bounded graceful-then-forced kill loop that confirms the
// process is gone, and launches the transaction log purge tool.
//
// # Basic Usage
//
//	import "github.com/giantswarm/zksupervisor"
//
//	paths, err := zksupervisor.ResolvePaths(zksupervisor.Locations{
//	    InstallDirectory: "/opt/zookeeper",
//	    DataDirectory:    "/var/lib/zookeeper",
//	    ControlScript:    zksupervisor.DefaultControlScript,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	servers, err := zksupervisor.ParseServerList("S:1:zk1,S:2:zk2,S:3:zk3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sup, err := zksupervisor.New(zksupervisor.StoreValues{},
//	    &zksupervisor.StaticProvider{Hostname: "zk2", ServerList: servers, Resolved: paths})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sup.Close()
//
//	if _, err := sup.KillInstance(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := sup.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # State
//
// The supervisor keeps no lifecycle state. Whether the server is running is
// decided by listing JVM processes (jps) on every call, so several supervisor
// processes on one host observe the same truth. Use the zksupervisor command,
// which takes a host lock, to keep them from interleaving.
package zksupervisor
