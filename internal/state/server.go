package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/giantswarm/zksupervisor/internal/sentinel"
)

// ErrInvalidServerSpec is returned by ParseServerList for malformed entries.
const ErrInvalidServerSpec = sentinel.Error("invalid server spec")

// ServerType is an ensemble member's role.
type ServerType int

const (
	// Standard is a voting participant.
	Standard ServerType = iota
	// Observer receives state updates but does not vote.
	Observer
)

// ConfigValue returns the suffix appended to the server.N line in zoo.cfg.
func (t ServerType) ConfigValue() string {
	if t == Observer {
		return ":observer"
	}
	return ""
}

// Code returns the single-letter code used in server spec strings.
func (t ServerType) Code() string {
	if t == Observer {
		return "O"
	}
	return "S"
}

// String returns the name of the server type.
func (t ServerType) String() string {
	switch t {
	case Standard:
		return "standard"
	case Observer:
		return "observer"
	default:
		return fmt.Sprintf("ServerType(%d)", int(t))
	}
}

// ParseServerType converts a code ("S", "O") or name into a ServerType.
func ParseServerType(s string) (ServerType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "standard", "participant":
		return Standard, nil
	case "o", "observer":
		return Observer, nil
	default:
		return Standard, fmt.Errorf("%w: unknown server type %q", ErrInvalidServerSpec, s)
	}
}

// ServerSpec identifies one ensemble member.
type ServerSpec struct {
	ID       int
	Hostname string
	Type     ServerType
}

// String formats the entry as "code:id:hostname".
func (s ServerSpec) String() string {
	return fmt.Sprintf("%s:%d:%s", s.Type.Code(), s.ID, s.Hostname)
}

// ServerList is the ordered set of ensemble members.
type ServerList []ServerSpec

// FindByHostname returns the member whose hostname equals hostname
// (case-insensitive), or nil.
func (l ServerList) FindByHostname(hostname string) *ServerSpec {
	for i := range l {
		if strings.EqualFold(l[i].Hostname, hostname) {
			spec := l[i]
			return &spec
		}
	}
	return nil
}

// String formats the list in the form accepted by ParseServerList.
func (l ServerList) String() string {
	parts := make([]string, len(l))
	for i, s := range l {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// ParseServerList parses a comma separated list of "code:id:hostname"
// entries, e.g. "S:1:zk1,S:2:zk2,O:3:zk3". Blank input yields an empty list.
// Duplicate ids are rejected.
func ParseServerList(s string) (ServerList, error) {
	var list ServerList
	seen := make(map[int]struct{})
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: %q must be code:id:hostname", ErrInvalidServerSpec, raw)
		}
		typ, err := ParseServerType(parts[0])
		if err != nil {
			return nil, err
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q has a non-positive or non-numeric id", ErrInvalidServerSpec, raw)
		}
		host := strings.TrimSpace(parts[2])
		if host == "" {
			return nil, fmt.Errorf("%w: %q has an empty hostname", ErrInvalidServerSpec, raw)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate server id %d", ErrInvalidServerSpec, id)
		}
		seen[id] = struct{}{}
		list = append(list, ServerSpec{ID: id, Hostname: host, Type: typ})
	}
	return list, nil
}
