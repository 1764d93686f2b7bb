// Package application implements the application/input state store described
// in spec §4.2: two plain maps, no TTL, entries removed only on explicit
// delete. Grounded on the operation store's locking discipline
// ([[operation]]) since the two packages share the same
// "process-lifetime singleton, mutex-guarded" shape.
package application

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/names"
	"github.com/nmxmxh/desktop-automation-service/pkg/pagination"
	"google.golang.org/grpc/codes"
)

// Store holds the live application set and their associated input records.
type Store struct {
	mu     sync.RWMutex
	apps   map[int]*uiautomationpb.Application
	inputs map[string]*uiautomationpb.Input
	log    *zap.Logger
}

func New(log *zap.Logger) *Store {
	return &Store{
		apps:   make(map[int]*uiautomationpb.Application),
		inputs: make(map[string]*uiautomationpb.Input),
		log:    log,
	}
}

// PutApplication registers or overwrites an application record.
func (s *Store) PutApplication(app *uiautomationpb.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.PID] = app
}

// GetApplication returns the application for pid.
func (s *Store) GetApplication(pid int) (*uiautomationpb.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[pid]
	if !ok {
		return nil, apierror.New(codes.NotFound, apierror.ReasonApplicationNotFound,
			"application not found", map[string]string{"pid": strconv.Itoa(pid)})
	}
	return app, nil
}

// ListApplications returns all applications, sorted by resource name
// ascending, paged via offset tokens.
func (s *Store) ListApplications(pageSize int, pageToken string) ([]*uiautomationpb.Application, string, error) {
	s.mu.RLock()
	apps := make([]*uiautomationpb.Application, 0, len(s.apps))
	for _, a := range s.apps {
		apps = append(apps, a)
	}
	s.mu.RUnlock()

	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })

	offset, err := pagination.DecodeOrZero(pageToken)
	if err != nil {
		return nil, "", err
	}
	size := pagination.ResolvePageSize(pageSize, pagination.DefaultPageSize)
	page, next := pagination.Page(apps, offset, size)
	return page, next, nil
}

// RemoveApplication deletes the application and any inputs scoped to it.
func (s *Store) RemoveApplication(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.apps, pid)
	prefix := names.ApplicationName{PID: pid}.String() + "/inputs/"
	for name := range s.inputs {
		if strings.HasPrefix(name, prefix) {
			delete(s.inputs, name)
		}
	}
}

// PutInput registers or overwrites an input record by its full resource name.
func (s *Store) PutInput(in *uiautomationpb.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[in.Name] = in
}

// GetInput returns the input record for name.
func (s *Store) GetInput(name string) (*uiautomationpb.Input, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.inputs[name]
	if !ok {
		return nil, apierror.New(codes.NotFound, apierror.ReasonInputNotFound,
			"input not found", map[string]string{"name": name})
	}
	return in, nil
}

// ListInputs returns inputs filtered by parent prefix (or all if parent is
// empty), sorted by resource name ascending, paged via offset tokens.
func (s *Store) ListInputs(parent string, pageSize int, pageToken string) ([]*uiautomationpb.Input, string, error) {
	s.mu.RLock()
	matched := make([]*uiautomationpb.Input, 0, len(s.inputs))
	for name, in := range s.inputs {
		if parent != "" && !strings.HasPrefix(name, parent+"/") {
			continue
		}
		matched = append(matched, in)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	offset, err := pagination.DecodeOrZero(pageToken)
	if err != nil {
		return nil, "", err
	}
	size := pagination.ResolvePageSize(pageSize, pagination.DefaultPageSize)
	page, next := pagination.Page(matched, offset, size)
	return page, next, nil
}

// CompleteInput transitions an input to completed or failed and stamps
// completeTime.
func (s *Store) CompleteInput(name string, failErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inputs[name]
	if !ok {
		return
	}
	in.CompleteTime = time.Now()
	if failErr != nil {
		in.State = uiautomationpb.InputFailed
		in.Error = failErr.Error()
	} else {
		in.State = uiautomationpb.InputCompleted
	}
}
