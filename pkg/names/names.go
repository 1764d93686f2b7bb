// Package names parses and formats the resource-name grammars enumerated in
// spec §4.1 and §6. Every parser accepts only its exact shape and fails with
// INVALID_ARGUMENT/INVALID_RESOURCE_NAME on anything else, per P12.
package names

import (
	"strconv"
	"strings"

	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"google.golang.org/grpc/codes"
)

// Wildcard denotes "collection-wide" scope, e.g. applications/-.
const Wildcard = "-"

func badName(resourceType, value, expected string) error {
	return apierror.New(codes.InvalidArgument, apierror.ReasonInvalidResourceName,
		"invalid "+resourceType+" resource name: "+value,
		map[string]string{"resourceType": resourceType, "value": value, "expectedFormat": expected})
}

// ApplicationName is a parsed applications/{pid} name. IsWildcard is true for
// applications/-, in which case PID is 0 and must not be used.
type ApplicationName struct {
	PID        int
	IsWildcard bool
}

func (n ApplicationName) String() string {
	if n.IsWildcard {
		return "applications/-"
	}
	return "applications/" + strconv.Itoa(n.PID)
}

// ParseApplicationName parses "applications/{pid}" or "applications/-".
func ParseApplicationName(name string) (ApplicationName, error) {
	const expected = "applications/{pid}"
	parts := strings.Split(name, "/")
	if len(parts) != 2 || parts[0] != "applications" {
		return ApplicationName{}, badName("Application", name, expected)
	}
	if parts[1] == Wildcard {
		return ApplicationName{IsWildcard: true}, nil
	}
	pid, err := parsePositiveInt(parts[1])
	if err != nil {
		return ApplicationName{}, badName("Application", name, expected)
	}
	return ApplicationName{PID: pid}, nil
}

// WindowName is a parsed applications/{pid}/windows/{windowId}[/state] name.
type WindowName struct {
	PID      int
	WindowID int
	State    bool
}

func (n WindowName) String() string {
	base := "applications/" + strconv.Itoa(n.PID) + "/windows/" + strconv.Itoa(n.WindowID)
	if n.State {
		return base + "/state"
	}
	return base
}

// ParseWindowName parses "applications/{pid}/windows/{windowId}" optionally
// suffixed with "/state".
func ParseWindowName(name string) (WindowName, error) {
	const expected = "applications/{pid}/windows/{windowId}"
	parts := strings.Split(name, "/")
	state := false
	if len(parts) == 5 && parts[4] == "state" {
		state = true
		parts = parts[:4]
	}
	if len(parts) != 4 || parts[0] != "applications" || parts[2] != "windows" {
		return WindowName{}, badName("Window", name, expected)
	}
	pid, err := parsePositiveInt(parts[1])
	if err != nil {
		return WindowName{}, badName("Window", name, expected)
	}
	wid, err := parsePositiveInt(parts[3])
	if err != nil {
		return WindowName{}, badName("Window", name, expected)
	}
	return WindowName{PID: pid, WindowID: wid, State: state}, nil
}

// ChildName is a parsed {parent}/{collection}/{id} name for collections whose
// parent is an application (observations, elements, inputs) — including the
// desktop-scoped "desktopInputs/{id}" variant for inputs with no application
// parent.
type ChildName struct {
	PID        int
	IsWildcard bool // parent was applications/- or absent
	Collection string
	ID         string
}

func (n ChildName) String() string {
	if n.Collection == "desktopInputs" {
		return "desktopInputs/" + n.ID
	}
	parent := "applications/-"
	if !n.IsWildcard {
		parent = "applications/" + strconv.Itoa(n.PID)
	}
	return parent + "/" + n.Collection + "/" + n.ID
}

// ParseChildName parses "applications/{pid}/{collection}/{id}" for the given
// expected collection name ("observations", "elements", or "inputs"). For
// collection=="inputs" it also accepts the parentless "desktopInputs/{id}"
// form, per §4.1.
func ParseChildName(name, collection string) (ChildName, error) {
	expected := "applications/{pid}/" + collection + "/{id}"
	if collection == "inputs" {
		expected = "applications/{pid}/inputs/{id} (or desktopInputs/{id})"
		if parts := strings.Split(name, "/"); len(parts) == 2 && parts[0] == "desktopInputs" {
			if parts[1] == "" {
				return ChildName{}, badName("Input", name, expected)
			}
			return ChildName{IsWildcard: true, Collection: "desktopInputs", ID: parts[1]}, nil
		}
	}
	parts := strings.Split(name, "/")
	if len(parts) != 4 || parts[0] != "applications" || parts[2] != collection {
		return ChildName{}, badName(collection, name, expected)
	}
	if parts[3] == "" {
		return ChildName{}, badName(collection, name, expected)
	}
	if parts[1] == Wildcard {
		return ChildName{IsWildcard: true, Collection: collection, ID: parts[3]}, nil
	}
	pid, err := parsePositiveInt(parts[1])
	if err != nil {
		return ChildName{}, badName(collection, name, expected)
	}
	return ChildName{PID: pid, Collection: collection, ID: parts[3]}, nil
}

// simpleName is a name in a single-segment collection (sessions, macros,
// displays).
type simpleName struct {
	Collection string
	ID         string
}

func (n simpleName) String() string { return n.Collection + "/" + n.ID }

func parseSimpleName(name, collection string) (simpleName, error) {
	parts := strings.Split(name, "/")
	if len(parts) != 2 || parts[0] != collection || parts[1] == "" {
		return simpleName{}, badName(collection, name, collection+"/{id}")
	}
	return simpleName{Collection: collection, ID: parts[1]}, nil
}

// ParseSessionName parses "sessions/{id}".
func ParseSessionName(name string) (string, error) {
	n, err := parseSimpleName(name, "sessions")
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

// ParseMacroName parses "macros/{id}".
func ParseMacroName(name string) (string, error) {
	n, err := parseSimpleName(name, "macros")
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

// ParseDisplayName parses "displays/{displayId}".
func ParseDisplayName(name string) (string, error) {
	n, err := parseSimpleName(name, "displays")
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

// OperationName is a parsed operations/{kind}/{id} or operations/{id} name.
type OperationName struct {
	Kind string // empty for the generic operations/{id} form
	ID   string
}

func (n OperationName) String() string {
	if n.Kind == "" {
		return "operations/" + n.ID
	}
	return "operations/" + n.Kind + "/" + n.ID
}

// ParseOperationName parses "operations/{kind}/{id}" or "operations/{id}".
func ParseOperationName(name string) (OperationName, error) {
	const expected = "operations/{kind}/{id} or operations/{id}"
	parts := strings.Split(name, "/")
	switch len(parts) {
	case 2:
		if parts[0] != "operations" || parts[1] == "" {
			return OperationName{}, badName("Operation", name, expected)
		}
		return OperationName{ID: parts[1]}, nil
	case 3:
		if parts[0] != "operations" || parts[1] == "" || parts[2] == "" {
			return OperationName{}, badName("Operation", name, expected)
		}
		return OperationName{Kind: parts[1], ID: parts[2]}, nil
	default:
		return OperationName{}, badName("Operation", name, expected)
	}
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, strconvErr
	}
	return n, nil
}

var strconvErr = strconv.ErrSyntax
