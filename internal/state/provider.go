package state

// Provider exposes the role state the supervisor acts on. Implementations
// compute it from membership and configuration; the supervisor only reads.
type Provider interface {
	// Us returns this host's ensemble entry, or nil in standalone mode.
	Us() *ServerSpec
	// Servers returns every ensemble member, including this host.
	Servers() ServerList
	// Paths returns the resolved installation paths.
	Paths() Paths
}

// StaticProvider is a Provider over fixed values. This host is the member
// whose hostname matches Hostname.
type StaticProvider struct {
	Hostname   string
	ServerList ServerList
	Resolved   Paths
}

var _ Provider = (*StaticProvider)(nil)

// Us implements Provider.
func (p *StaticProvider) Us() *ServerSpec {
	if p.Hostname == "" {
		return nil
	}
	return p.ServerList.FindByHostname(p.Hostname)
}

// Servers implements Provider.
func (p *StaticProvider) Servers() ServerList {
	return p.ServerList
}

// Paths implements Provider.
func (p *StaticProvider) Paths() Paths {
	return p.Resolved
}
