package uiautomationpb

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

// --- Common request shapes ---

// PageRequest is embedded by every List* request (AIP-158, spec §4.1).
type PageRequest struct {
	PageSize  int
	PageToken string
}

// ReadMaskRequest is embedded by the Get requests that accept a read mask
// (AIP-157): application, window, display and macro.
type ReadMaskRequest struct {
	ReadMask []string
}

// UpdateMaskRequest is embedded by every Update* request (AIP-134).
type UpdateMaskRequest struct {
	UpdateMask []string
}

// --- Application ---

type OpenApplicationRequest struct {
	ID string // bundle id or path
}
type CloseApplicationRequest struct{ Name string }
type GetApplicationRequest struct {
	Name string
	ReadMaskRequest
}
type ListApplicationsRequest struct{ PageRequest }
type ListApplicationsResponse struct {
	Applications  []*Application
	NextPageToken string
}

// --- Window ---

type GetWindowRequest struct {
	Name string
	ReadMaskRequest
}
type ListWindowsRequest struct {
	Parent string // applications/{pid} or applications/-
	PageRequest
}
type ListWindowsResponse struct {
	Windows       []*Window
	NextPageToken string
}
type GetWindowStateRequest struct{ Name string }
type MoveWindowRequest struct {
	Name string
	X, Y float64
}
type ResizeWindowRequest struct {
	Name          string
	Width, Height float64
}
type MinimizeWindowRequest struct{ Name string }
type RestoreWindowRequest struct{ Name string }
type CloseWindowRequest struct{ Name string }

// --- Display ---

type GetDisplayRequest struct {
	Name string
	ReadMaskRequest
}
type ListDisplaysRequest struct{ PageRequest }
type ListDisplaysResponse struct {
	Displays      []*Display
	NextPageToken string
}

// --- Input ---

type CreateInputRequest struct {
	Parent string // applications/{pid}, applications/-, or ""
	Action map[string]string
}
type GetInputRequest struct{ Name string }
type ListInputsRequest struct {
	Parent string
	PageRequest
}
type ListInputsResponse struct {
	Inputs        []*Input
	NextPageToken string
}

// --- Observation ---

type CreateObservationRequest struct {
	Parent string // applications/{pid}
	Type   string
	Filter string
}
type GetObservationRequest struct{ Name string }
type ListObservationsRequest struct {
	Parent string
	PageRequest
}
type ListObservationsResponse struct {
	Observations  []*Observation
	NextPageToken string
}
type CancelObservationRequest struct{ Name string }
type StreamObservationsRequest struct{ Name string }

// --- Macro ---

type CreateMacroRequest struct{ Macro *Macro }
type GetMacroRequest struct {
	Name string
	ReadMaskRequest
}
type ListMacrosRequest struct{ PageRequest }
type ListMacrosResponse struct {
	Macros        []*Macro
	NextPageToken string
}
type UpdateMacroRequest struct {
	Macro *Macro
	UpdateMaskRequest
}
type DeleteMacroRequest struct{ Name string }
type ExecuteMacroRequest struct {
	Name       string
	Parent     string
	Parameters map[string]string
	Timeout    time.Duration
}
type ExecuteMacroResult struct {
	MacroName    string
	ActionsRun   int
}

// --- Session ---

type CreateSessionRequest struct{ Metadata map[string]string }
type GetSessionRequest struct{ Name string }
type ListSessionsRequest struct{ PageRequest }
type ListSessionsResponse struct {
	Sessions      []*Session
	NextPageToken string
}
type DeleteSessionRequest struct{ Name string }
type BeginTransactionRequest struct {
	Session   string
	Isolation IsolationLevel
	Timeout   time.Duration
}
type CommitTransactionRequest struct {
	Session       string
	TransactionID string
}
type RollbackTransactionRequest struct {
	Session       string
	TransactionID string
	RevisionID    string
}
type RecordOperationRequest struct {
	Session  string
	Type     string
	Resource string
	Success  bool
	Error    string
}
type GetSessionSnapshotRequest struct{ Session string }
type SessionSnapshot struct {
	Session      *Session
	Applications []string
	Observations []string
	History      []OperationRecord
}

// --- Clipboard ---

type GetClipboardRequest struct{ Name string }
type WriteClipboardRequest struct{ Content Clipboard }
type ClearClipboardRequest struct{}
type GetClipboardHistoryRequest struct {
	Name string
	PageRequest
}
type GetClipboardHistoryResponse struct {
	Entries       []*ClipboardHistoryEntry
	NextPageToken string
}

// --- Screenshot ---

type CaptureScreenshotRequest struct {
	DisplayID      string
	ElementID      string
	Window         string
	Region         *Rect
	Padding        float64
	Format         string
	Quality        int
	IncludeOCRText bool
}
type CaptureScreenshotResponse struct {
	ImageBytes []byte
	Width      int
	Height     int
	OCRText    string
}

// --- Script ---

type ExecuteScriptRequest struct {
	Kind        int // platform.ScriptKind
	Source      string
	CompileOnly bool
	ShellOpts   *ShellOptions
}
type ShellOptions struct {
	WorkingDir string
	Env        map[string]string
	Stdin      string
	Path       string
	Timeout    time.Duration
}
type ExecuteScriptResponse struct {
	Success  bool
	Output   string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}
type ValidateScriptRequest struct {
	Kind   int
	Source string
}
type ValidateScriptResponse struct {
	Valid   bool
	Message string
}

// --- File dialog ---

type OpenFileDialogRequest struct {
	AllowMultiple    bool
	ExtensionFilters []string
}
type OpenFileDialogResponse struct{ Paths []string }
type SaveFileDialogRequest struct {
	DefaultDir       string
	DefaultFilename  string
	ConfirmOverwrite bool
}
type SaveFileDialogResponse struct{ Path string }
type SelectFileRequest struct{ Reveal bool }
type SelectFileResponse struct{ Path string }
type SelectDirectoryRequest struct{ CreateMissing bool }
type SelectDirectoryResponse struct{ Path string }
type DragFilesRequest struct {
	Files         []string
	TargetElement string
	Duration      time.Duration
}
type DragFilesResponse struct{}

// OperationHandle is the response envelope for LRO-returning RPCs: handlers return
// the operation name immediately; callers poll google.longrunning.Operations.
type OperationHandle struct{ Name string }

// UIAutomationServiceServer is the primary resource-oriented service (spec
// §1). Streaming observation delivery uses the grpc.ServerStreamingServer
// generic, matching current protoc-gen-go-grpc output.
type UIAutomationServiceServer interface {
	OpenApplication(context.Context, *OpenApplicationRequest) (*OperationHandle, error)
	CloseApplication(context.Context, *CloseApplicationRequest) (*Application, error)
	GetApplication(context.Context, *GetApplicationRequest) (*Application, error)
	ListApplications(context.Context, *ListApplicationsRequest) (*ListApplicationsResponse, error)

	GetWindow(context.Context, *GetWindowRequest) (*Window, error)
	ListWindows(context.Context, *ListWindowsRequest) (*ListWindowsResponse, error)
	GetWindowState(context.Context, *GetWindowStateRequest) (*WindowState, error)
	MoveWindow(context.Context, *MoveWindowRequest) (*Window, error)
	ResizeWindow(context.Context, *ResizeWindowRequest) (*Window, error)
	MinimizeWindow(context.Context, *MinimizeWindowRequest) (*Window, error)
	RestoreWindow(context.Context, *RestoreWindowRequest) (*Window, error)
	CloseWindow(context.Context, *CloseWindowRequest) (*Empty, error)

	GetDisplay(context.Context, *GetDisplayRequest) (*Display, error)
	ListDisplays(context.Context, *ListDisplaysRequest) (*ListDisplaysResponse, error)

	CreateInput(context.Context, *CreateInputRequest) (*Input, error)
	GetInput(context.Context, *GetInputRequest) (*Input, error)
	ListInputs(context.Context, *ListInputsRequest) (*ListInputsResponse, error)

	CreateObservation(context.Context, *CreateObservationRequest) (*OperationHandle, error)
	GetObservation(context.Context, *GetObservationRequest) (*Observation, error)
	ListObservations(context.Context, *ListObservationsRequest) (*ListObservationsResponse, error)
	CancelObservation(context.Context, *CancelObservationRequest) (*Observation, error)
	StreamObservations(*StreamObservationsRequest, grpc.ServerStreamingServer[ObservationEvent]) error

	CreateMacro(context.Context, *CreateMacroRequest) (*Macro, error)
	GetMacro(context.Context, *GetMacroRequest) (*Macro, error)
	ListMacros(context.Context, *ListMacrosRequest) (*ListMacrosResponse, error)
	UpdateMacro(context.Context, *UpdateMacroRequest) (*Macro, error)
	DeleteMacro(context.Context, *DeleteMacroRequest) (*Empty, error)
	ExecuteMacro(context.Context, *ExecuteMacroRequest) (*OperationHandle, error)

	CreateSession(context.Context, *CreateSessionRequest) (*Session, error)
	GetSession(context.Context, *GetSessionRequest) (*Session, error)
	ListSessions(context.Context, *ListSessionsRequest) (*ListSessionsResponse, error)
	DeleteSession(context.Context, *DeleteSessionRequest) (*Empty, error)
	BeginTransaction(context.Context, *BeginTransactionRequest) (*Transaction, error)
	CommitTransaction(context.Context, *CommitTransactionRequest) (*Transaction, error)
	RollbackTransaction(context.Context, *RollbackTransactionRequest) (*Transaction, error)
	RecordOperation(context.Context, *RecordOperationRequest) (*Empty, error)
	GetSessionSnapshot(context.Context, *GetSessionSnapshotRequest) (*SessionSnapshot, error)

	GetClipboard(context.Context, *GetClipboardRequest) (*Clipboard, error)
	WriteClipboard(context.Context, *WriteClipboardRequest) (*Clipboard, error)
	ClearClipboard(context.Context, *ClearClipboardRequest) (*Empty, error)
	GetClipboardHistory(context.Context, *GetClipboardHistoryRequest) (*GetClipboardHistoryResponse, error)

	CaptureScreenshot(context.Context, *CaptureScreenshotRequest) (*CaptureScreenshotResponse, error)

	ExecuteScript(context.Context, *ExecuteScriptRequest) (*ExecuteScriptResponse, error)
	ValidateScript(context.Context, *ValidateScriptRequest) (*ValidateScriptResponse, error)

	OpenFileDialog(context.Context, *OpenFileDialogRequest) (*OpenFileDialogResponse, error)
	SaveFileDialog(context.Context, *SaveFileDialogRequest) (*SaveFileDialogResponse, error)
	SelectFile(context.Context, *SelectFileRequest) (*SelectFileResponse, error)
	SelectDirectory(context.Context, *SelectDirectoryRequest) (*SelectDirectoryResponse, error)
	DragFiles(context.Context, *DragFilesRequest) (*DragFilesResponse, error)
}

// Empty is the shared empty-body response type for mutation RPCs with no
// resource to return. Exported (unlike a private marker type) so that
// implementations of UIAutomationServiceServer declared in other packages
// can spell the return type of CloseWindow/DeleteMacro/DeleteSession/
// RecordOperation/ClearClipboard.
type Empty struct{}

// EmptyResponse is the shared empty-body response singleton.
var EmptyResponse = &Empty{}
