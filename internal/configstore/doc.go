// Package configstore provides the configuration values the supervisor reads
// at the start of every operation: ports, purge retention, the java.env and
// log4j.properties texts and extra zoo.cfg properties.
//
// Values can come from a YAML file (FileStore), a Kubernetes ConfigMap
// (LoadConfigMap) or be built in memory. All stores are read-only snapshots;
// reload by constructing a new one.
package configstore
