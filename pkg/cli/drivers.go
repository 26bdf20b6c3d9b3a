package cli

import (
	"fmt"
	"strings"

	"github.com/sourcebridge/sourcebridge/pkg/drivers/folder"
	"github.com/sourcebridge/sourcebridge/pkg/engine/capability"
)

// driverRef is "<kind>:<location>", e.g. "folder:/srv/mirror/upstream". The
// core defines no driver syntax of its own (spec.md §1 — drivers are an
// out-of-scope external collaborator); this is the CLI's own notation for
// selecting among the drivers this binary ships.
func parseDriverRef(ref string) (kind, location string, err error) {
	parts := strings.SplitN(ref, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("driver reference %q must have the form <kind>:<path>", ref)
	}
	return parts[0], parts[1], nil
}

func buildOrigin(ref string) (capability.OriginReader, error) {
	kind, location, err := parseDriverRef(ref)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "folder":
		return folder.NewOrigin(location), nil
	default:
		return nil, fmt.Errorf("unknown origin driver %q (this build only ships \"folder\")", kind)
	}
}

func buildDestination(ref string) (capability.DestinationWriter, error) {
	kind, location, err := parseDriverRef(ref)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "folder":
		return folder.NewDestination(location), nil
	default:
		return nil, fmt.Errorf("unknown destination driver %q (this build only ships \"folder\")", kind)
	}
}
