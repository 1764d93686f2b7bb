// Package apierror implements the AIP-193 structured error taxonomy described
// in spec §4.1 and §7: every error carries a gRPC code, a human message, and a
// machine-readable ErrorInfo{reason, domain, metadata} packed into the status
// detail list, so that clients branch on reason rather than message text.
package apierror

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/anypb"
)

// Domain is the fixed ErrorInfo domain for this service.
const Domain = "macosusesdk.com"

// Reason codes, grouped per §4.1/§7. Clients branch on these, not on Message.
const (
	ReasonInvalidResourceName = "INVALID_RESOURCE_NAME"
	ReasonRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	ReasonInvalidDimension    = "INVALID_DIMENSION"
	ReasonInvalidCoordinate   = "INVALID_COORDINATE"
	ReasonInvalidPageToken    = "INVALID_PAGE_TOKEN"
	ReasonUnknownFieldPath    = "UNKNOWN_FIELD_PATH"
	ReasonUnspecifiedEnum     = "UNSPECIFIED_ENUM"
	ReasonInvalidRegex        = "INVALID_REGEX"

	ReasonApplicationNotFound = "APPLICATION_NOT_FOUND"
	ReasonWindowNotFound      = "WINDOW_NOT_FOUND"
	ReasonElementNotFound     = "ELEMENT_NOT_FOUND"
	ReasonSessionNotFound     = "SESSION_NOT_FOUND"
	ReasonMacroNotFound       = "MACRO_NOT_FOUND"
	ReasonObservationNotFound = "OBSERVATION_NOT_FOUND"
	ReasonOperationNotFound   = "OPERATION_NOT_FOUND"
	ReasonDisplayNotFound     = "DISPLAY_NOT_FOUND"
	ReasonInputNotFound       = "INPUT_NOT_FOUND"

	ReasonPermissionDenied = "PERMISSION_DENIED"

	ReasonElementNoBounds      = "ELEMENT_NO_BOUNDS"
	ReasonAmbiguousWindowMatch = "AMBIGUOUS_WINDOW_MATCH"
	ReasonSessionNotActive     = "SESSION_NOT_ACTIVE"
	ReasonNoActiveTransaction  = "NO_ACTIVE_TRANSACTION"
	ReasonTransactionMismatch  = "TRANSACTION_ID_MISMATCH"
	ReasonUnknownRevision      = "UNKNOWN_REVISION_ID"
	ReasonNoCloseButton        = "NO_CLOSE_BUTTON"
	ReasonFileExists           = "FILE_EXISTS"
	ReasonUnsupportedAssignSrc = "UNSUPPORTED_ASSIGN_SOURCE"
	ReasonUnknownMethodCall    = "UNKNOWN_METHOD_CALL"
	ReasonSecurityViolation    = "SECURITY_VIOLATION"

	ReasonAdapterFailure     = "ADAPTER_FAILURE"
	ReasonTimeout            = "TIMEOUT"
	ReasonSerializationError = "SERIALIZATION_ERROR"
)

// Error is the service's structured error type. It satisfies error;
// ToGRPCError converts it into a gRPC status carrying its code and ErrorInfo.
type Error struct {
	Code     codes.Code
	Reason   string
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a structured Error.
func New(code codes.Code, reason, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Metadata: metadata}
}

// Wrap builds a structured Error around an underlying cause.
func Wrap(code codes.Code, reason, message string, cause error, metadata map[string]string) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Metadata: metadata, Cause: cause}
}

// LogAndWrap logs err at Error level with context fields before returning it,
// mirroring the teacher's graceful.LogAndWrap.
func LogAndWrap(ctx context.Context, log *zap.Logger, code codes.Code, reason, message string, cause error, metadata map[string]string) *Error {
	e := Wrap(code, reason, message, cause, metadata)
	if log != nil {
		fields := []zap.Field{zap.String("reason", reason), zap.String("code", code.String())}
		if cause != nil {
			fields = append(fields, zap.Error(cause))
		}
		log.Error(message, fields...)
	}
	return e
}

// ToGRPCError converts err into a gRPC status error carrying ErrorInfo details
// in the grpc-status-details-bin trailer. If err isn't an *Error it is mapped
// to INTERNAL with no structured detail. If detail packing fails, the plain
// status (without structured details) is still returned rather than dropping
// the error entirely.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}

	st := status.New(e.Code, e.Error())
	info := &errdetails.ErrorInfo{
		Reason:   e.Reason,
		Domain:   Domain,
		Metadata: e.Metadata,
	}
	withDetails, detailErr := st.WithDetails(info)
	if detailErr != nil {
		// Packing failed: return the plain status rather than nothing (§4.1).
		return st.Err()
	}
	return withDetails.Err()
}

// ToRPCStatus renders err as a google.rpc.Status, used when embedding a
// failure inside an LRO's Result (spec §3 "error carries an RPC status").
func ToRPCStatus(err error) *statuspb.Status {
	if err == nil {
		return nil
	}
	grpcErr := ToGRPCError(err)
	st := status.Convert(grpcErr)
	proto3 := st.Proto()
	details := make([]*anypb.Any, 0, len(proto3.GetDetails()))
	details = append(details, proto3.GetDetails()...)
	return &statuspb.Status{
		Code:    proto3.GetCode(),
		Message: proto3.GetMessage(),
		Details: details,
	}
}

// Is reports whether err is a structured *Error with the given reason.
func Is(err error, reason string) bool {
	e, ok := err.(*Error)
	return ok && e.Reason == reason
}
