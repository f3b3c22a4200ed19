// Package deps reports availability of the external programs solshift
// drives.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency solshift relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Hyprsunset describes the external display-color controller. In socket
// mode its presence is advisory (the daemon only needs the socket); in
// process mode it is required.
func Hyprsunset(binary string, optional bool) Requirement {
	return Requirement{
		Name:        "hyprsunset",
		Command:     binary,
		Description: "display blue-light filter controller",
		Optional:    optional,
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
