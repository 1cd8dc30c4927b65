package locator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Defaults used when the corresponding Locator field is empty.
const (
	DefaultCommand = "jps"
	DefaultMarker  = "QuorumPeerMain"
)

// Locator runs a process listing command whose stdout has one
// "<pid> <name>" line per JVM.
type Locator struct {
	Command string
	Args    []string
	Marker  string
}

// FindPID reports the pid of the first listed process named Marker. found is
// false when the listing is empty or nothing matches. Anything the listing
// writes to stderr is discarded. The child is killed and reaped before
// FindPID returns, whatever the outcome.
func (l *Locator) FindPID(ctx context.Context) (pid string, found bool, err error) {
	name := l.Command
	if name == "" {
		name = DefaultCommand
	}

	cmd := exec.CommandContext(ctx, name, l.Args...) //nolint:gosec // command comes from operator config
	cmd.Stderr = io.Discard
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", false, fmt.Errorf("pipe %s stdout: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return "", false, fmt.Errorf("start %s: %w", name, err)
	}
	defer func() {
		// Stop early readers from leaving the child blocked on a full pipe.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	pid, found, err = ParseListing(stdout, l.marker())
	if err != nil {
		return "", false, fmt.Errorf("read %s output: %w", name, err)
	}
	return pid, found, nil
}

func (l *Locator) marker() string {
	if l.Marker == "" {
		return DefaultMarker
	}
	return l.Marker
}

// ParseListing scans r for the first line made of exactly two
// whitespace-separated fields whose second field equals marker, and returns
// the first field.
func ParseListing(r io.Reader, marker string) (pid string, found bool, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[1] == marker {
			return fields[0], true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}
