// Package uiautomationpb hand-models the message and service shapes that a
// protoc-gen-go/protoc-gen-go-grpc run would otherwise generate from a .proto
// IDL. Per spec §1, proto definitions and wire encoding are an explicit
// non-goal ("we assume generated stubs exist"); this package is that stand-in,
// written in the generated-code idiom (PascalCase messages, *Request/*Response
// pairs, a single service interface) without depending on protoc. Where a real
// generated package already exists for a concern — longrunningpb for
// google.longrunning.Operations, genproto's rpc/status and rpc/errdetails for
// AIP-193 — this package uses those directly instead of re-modeling them.
package uiautomationpb

import "time"

// --- Resources (spec §3) ---

// Application mirrors spec §3 Application.
type Application struct {
	Name        string // applications/{pid}
	DisplayName string
	PID         int
}

// Rect mirrors spec §3 bounds.
type Rect struct{ X, Y, W, H float64 }

// Window mirrors spec §3 Window.
type Window struct {
	Name     string // applications/{pid}/windows/{windowId}
	Title    string
	Bounds   Rect
	ZIndex   int
	Visible  bool
	BundleID string
}

// WindowState mirrors spec §3 WindowState. Fullscreen is a pointer because
// the field is explicitly optional.
type WindowState struct {
	Name        string
	Resizable   bool
	Minimizable bool
	Closable    bool
	Modal       bool
	Floating    bool
	AXHidden    bool
	Minimized   bool
	Focused     bool
	Fullscreen  *bool
}

// Display mirrors spec §3 Display.
type Display struct {
	Name         string // displays/{displayId}
	GlobalFrame  Rect
	VisibleFrame Rect
	Scale        float64
	IsMain       bool
}

// Element mirrors spec §3 Element.
type Element struct {
	ID         string // elem_{ts}_{rand}
	PID        int
	Bounds     *Rect
	Attributes map[string]string
	Timestamp  time.Time
}

// InputState enumerates the input-record lifecycle (spec §3).
type InputState int

const (
	InputPending InputState = iota
	InputExecuting
	InputCompleted
	InputFailed
)

// Input mirrors spec §3 Input record.
type Input struct {
	Name         string // {parent}/inputs/{id}
	Action       map[string]string
	State        InputState
	CreateTime   time.Time
	CompleteTime time.Time
	Error        string
}

// ObservationState enumerates an observation's lifecycle.
type ObservationState int

const (
	ObservationPending ObservationState = iota
	ObservationActive
	ObservationCancelled
)

// Observation mirrors spec §3/§4.7.
type Observation struct {
	Name          string // {parent}/observations/{id}
	Type          string
	Filter        string
	State         ObservationState
	EventCount    int64
	EventsDropped int64
	PID           int
}

// ObservationEvent is one item of an observation's event stream.
type ObservationEvent struct {
	Observation string
	Type        string
	PID         int
	WindowID    int
	Timestamp   time.Time
}

// SessionState enumerates spec §3 Session.state.
type SessionState int

const (
	SessionActive SessionState = iota
	SessionInTransaction
	SessionExpired
)

// Session mirrors spec §3 Session.
type Session struct {
	Name                string // sessions/{id}
	State               SessionState
	CreateTime          time.Time
	LastAccessTime       time.Time
	ExpireTime          time.Time
	Metadata            map[string]string
	ActiveTransactionID string
}

// IsolationLevel enumerates spec §3 Transaction.isolation.
type IsolationLevel int

const (
	ReadCommitted IsolationLevel = iota
	Serializable
)

// TransactionState enumerates spec §3 Transaction.state.
type TransactionState int

const (
	TransactionActive TransactionState = iota
	TransactionCommitted
	TransactionRolledBack
)

// Transaction mirrors spec §3 Transaction.
type Transaction struct {
	ID                 string
	SessionName        string
	Isolation          IsolationLevel
	OperationStartIdx  int
	State              TransactionState
	OperationsCount    int
}

// OperationRecord is one entry of a session's operation history (spec §4.9
// "RecordOperation").
type OperationRecord struct {
	Type            string
	Resource        string
	Success         bool
	Error           string
	OperationTime   time.Time
	TransactionID   string
}

// Snapshot mirrors spec §3 Snapshot.
type Snapshot struct {
	RevisionID     string
	Timestamp      time.Time
	OperationIndex int
}

// MacroAction is a tagged variant over spec §4.8's action taxonomy.
type MacroAction struct {
	Kind        string // "input", "wait", "conditional", "loop", "assign", "methodCall"
	Input       *InputAction
	Wait        *WaitAction
	Conditional *ConditionalAction
	Loop        *LoopAction
	Assign      *AssignAction
	MethodCall  *MethodCallAction
}

type InputAction struct {
	Text string
}

type WaitAction struct {
	Kind            string // "fixed" or "condition"
	DurationSeconds float64
	Condition       *MacroCondition
	PollInterval    time.Duration
	Timeout         time.Duration
}

type ConditionalAction struct {
	Condition *MacroCondition
	Then      []MacroAction
	Else      []MacroAction
}

type LoopAction struct {
	Kind            string // "count", "while", "forEach"
	Count           int
	While           *MacroCondition
	ForEachSelector string // "elementSelector", "windowTitlePattern", "literal"
	ForEachValue    string
	ItemVariable    string
	Body            []MacroAction
}

type AssignAction struct {
	Variable   string
	SourceKind string // "literal", "parameter", "expression", "elementAttribute"
	Value      string
}

type MethodCallAction struct {
	Method string // "ClickElement", "TypeText", ...
	Args   map[string]string
}

// MacroCondition is a tagged variant over spec §4.8's condition grammar.
type MacroCondition struct {
	Kind            string // "elementExists","windowExists","applicationRunning","variableEquals","compound"
	Selector        string
	WindowPattern   string
	PID             int
	Variable        string
	EqualsValue     string
	CompoundOp      string // "AND","OR","NOT"
	CompoundOperands []MacroCondition
}

// Macro mirrors spec §3 Macro.
type Macro struct {
	Name             string // macros/{id}
	DisplayName      string
	Description      string
	Actions          []MacroAction
	Parameters       []MacroParameter
	Tags             []string
	CreateTime       time.Time
	UpdateTime       time.Time
	ExecutionCount   int64
}

type MacroParameter struct {
	Name     string
	Required bool
	Default  string
}

// ClipboardKind mirrors platform.ClipboardKind's tag values for the wire type.
type ClipboardKind int

const (
	ClipboardText ClipboardKind = iota
	ClipboardRTF
	ClipboardHTML
	ClipboardImage
	ClipboardFiles
	ClipboardURL
)

// Clipboard mirrors spec §3/§4.10.
type Clipboard struct {
	Name        string // "clipboard"
	Kind        ClipboardKind
	Text        string
	RTF         string
	HTML        string
	ImagePNG    []byte
	Files       []string
	URL         string
	AvailableIn []ClipboardKind
}

// ClipboardHistoryEntry mirrors spec §3.
type ClipboardHistoryEntry struct {
	Content         Clipboard
	CopiedTime      time.Time
	SourceApplication string
}
