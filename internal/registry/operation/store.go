// Package operation implements the long-running-operation store described in
// spec §4.3: Create/Finish/Fail/Put/Get/Delete/Cancel/Wait/List over a
// name -> *longrunningpb.Operation map, built directly against the real
// google.longrunning.Operations proto types (so the service can expose the
// standard Operations gRPC service verbatim) rather than a hand-rolled
// Operation message, per DESIGN.md.
package operation

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/json"
	"github.com/nmxmxh/desktop-automation-service/pkg/pagination"
)

// toAny packs an arbitrary Go value into an *anypb.Any for an Operation's
// Metadata/Result fields. A real proto.Message (e.g. from longrunningpb or
// genproto) is packed directly; the service's own resource types are plain
// Go structs (api/uiautomationpb hand-models generated-code shapes without a
// protoc run, see its package doc), so those round-trip through
// structpb.Struct instead — the same technique generic JSON payloads use to
// ride inside a google.protobuf.Any.
func toAny(v any) (*anypb.Any, error) {
	if v == nil {
		return nil, nil
	}
	if msg, ok := v.(proto.Message); ok {
		return anypb.New(msg)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return anypb.New(st)
}

// Store is a process-lifetime singleton mapping name -> *Operation. All state
// transitions occur under mu, per spec §4.3's concurrency contract.
type Store struct {
	mu  sync.Mutex
	ops map[string]*longrunningpb.Operation
	log *zap.Logger
}

// New constructs an empty Store.
func New(log *zap.Logger) *Store {
	return &Store{ops: make(map[string]*longrunningpb.Operation), log: log}
}

// Create registers a new pending operation operations/{kind}/{id} with a
// random uuid id and the given metadata, returning its name.
func (s *Store) Create(kind string, metadata any) (string, error) {
	id := uuid.NewString()
	name := "operations/" + kind + "/" + id

	op := &longrunningpb.Operation{Name: name, Done: false}
	if metadata != nil {
		meta, err := toAny(metadata)
		if err != nil {
			return "", apierror.Wrap(codes.Internal, apierror.ReasonSerializationError,
				"failed to pack operation metadata", err, nil)
		}
		op.Metadata = meta
	}

	s.mu.Lock()
	s.ops[name] = op
	s.mu.Unlock()
	return name, nil
}

// Put inserts or overwrites an operation record directly (used when adopting
// an externally-constructed Operation).
func (s *Store) Put(op *longrunningpb.Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops[op.GetName()] = op
}

// Get returns the stored operation (the live record, not a copy), or an error
// if absent.
// Per P5, once done is observed true, subsequent Gets return the same done
// and result — guaranteed here because Finish/Fail/Cancel are the only
// writers and none of them un-does a completed operation.
func (s *Store) Get(name string) (*longrunningpb.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[name]
	if !ok {
		return nil, apierror.New(codes.NotFound, apierror.ReasonOperationNotFound,
			"operation not found: "+name, map[string]string{"name": name})
	}
	return op, nil
}

// Delete removes an operation unconditionally.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ops[name]; !ok {
		return apierror.New(codes.NotFound, apierror.ReasonOperationNotFound,
			"operation not found: "+name, map[string]string{"name": name})
	}
	delete(s.ops, name)
	return nil
}

// Finish marks the operation done with a successful typed response. Per
// §4.3, repeated completion with different payloads is implementation
// defined; here it overwrites and logs a warning, since silently discarding
// the second completion would hide a programming error in the caller.
func (s *Store) Finish(name string, response any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[name]
	if !ok {
		return apierror.New(codes.NotFound, apierror.ReasonOperationNotFound,
			"operation not found: "+name, map[string]string{"name": name})
	}
	if op.GetDone() && s.log != nil {
		s.log.Warn("operation completed more than once", zap.String("name", name))
	}
	respAny, err := toAny(response)
	if err != nil {
		return apierror.Wrap(codes.Internal, apierror.ReasonSerializationError,
			"failed to pack operation response", err, nil)
	}
	op.Done = true
	if respAny != nil {
		op.Result = &longrunningpb.Operation_Response{Response: respAny}
	}
	return nil
}

// Fail marks the operation done with a failure status.
func (s *Store) Fail(name string, code codes.Code, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[name]
	if !ok {
		return apierror.New(codes.NotFound, apierror.ReasonOperationNotFound,
			"operation not found: "+name, map[string]string{"name": name})
	}
	op.Done = true
	op.Result = &longrunningpb.Operation_Error{Error: &status.Status{
		Code:    int32(code),
		Message: message,
	}}
	return nil
}

// Cancel sets done=true with a CANCELLED error status, per §4.3.
func (s *Store) Cancel(name string) error {
	return s.Fail(name, codes.Cancelled, "operation cancelled")
}

// Wait polls the operation every 100ms until done or timeout elapses, then
// returns the current snapshot either way (§4.3, §5 "Cancellation and
// timeouts"). timeout <= 0 means "wait indefinitely until ctx is done".
func (s *Store) Wait(ctx context.Context, name string, timeout time.Duration) (*longrunningpb.Operation, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		op, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		if op.GetDone() {
			return op, nil
		}
		select {
		case <-ctx.Done():
			return op, nil
		case <-deadline:
			return op, nil
		case <-ticker.C:
		}
	}
}

// List returns a deterministic name-sorted, optionally prefix- and
// done-filtered page. Its page tokens are codec-isolated from other
// pagination uses per §4.3 ("independent of other pagination codecs").
func (s *Store) List(namePrefix string, onlyDone bool, pageSize int, pageToken string) ([]*longrunningpb.Operation, string, error) {
	s.mu.Lock()
	names := make([]string, 0, len(s.ops))
	for n, op := range s.ops {
		if namePrefix != "" && !strings.HasPrefix(n, namePrefix) {
			continue
		}
		if onlyDone && !op.GetDone() {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	ops := make([]*longrunningpb.Operation, len(names))
	for i, n := range names {
		ops[i] = s.ops[n]
	}
	s.mu.Unlock()

	offset, err := pagination.DecodeOrZero(pageToken)
	if err != nil {
		return nil, "", err
	}
	size := pagination.ResolvePageSize(pageSize, pagination.DefaultPageSize)
	page, next := pagination.Page(ops, offset, size)
	return page, next, nil
}

// ToGRPCStatusError converts a structured apierror into the gRPC status error
// callers should return, centralizing the "always land on Finish or Fail"
// rule (spec §9) for LRO background tasks.
func ToGRPCStatusError(err error) error {
	if err == nil {
		return nil
	}
	return grpcstatus.Convert(apierror.ToGRPCError(err)).Err()
}
