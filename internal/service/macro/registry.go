// Package macro implements the macro registry and action interpreter
// described in spec §4.8. Registry operations (create/get/list/update/
// delete/increment-execution-count) follow the same mutex-guarded map shape
// as the other in-memory registries ([[operation]]); the executor is a
// stand-alone component below in executor.go.
package macro

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/fieldmask"
	"github.com/nmxmxh/desktop-automation-service/pkg/pagination"
	"google.golang.org/grpc/codes"
)

// mutableFields lists the macro fields UpdateMacro may patch (§4.1/P4).
var mutableFields = map[string]bool{
	"displayName": true,
	"description": true,
	"actions":     true,
	"parameters":  true,
	"tags":        true,
}

// Registry holds the live macro set.
type Registry struct {
	mu     sync.Mutex
	macros map[string]*uiautomationpb.Macro
	log    *zap.Logger
}

func New(log *zap.Logger) *Registry {
	return &Registry{macros: make(map[string]*uiautomationpb.Macro), log: log}
}

// Create registers m, auto-generating an id if m.Name is empty.
func (r *Registry) Create(m *uiautomationpb.Macro) *uiautomationpb.Macro {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.Name == "" {
		m.Name = "macros/" + uuid.NewString()
	}
	now := time.Now()
	m.CreateTime = now
	m.UpdateTime = now
	r.macros[m.Name] = m
	return m
}

// Get returns the macro for name.
func (r *Registry) Get(name string) (*uiautomationpb.Macro, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.macros[name]
	if !ok {
		return nil, notFound(name)
	}
	return m, nil
}

// List returns macros sorted by name ascending, paged via offset tokens,
// defaulting to the smaller macro/session page size (§4.1).
func (r *Registry) List(pageSize int, pageToken string) ([]*uiautomationpb.Macro, string, error) {
	r.mu.Lock()
	all := make([]*uiautomationpb.Macro, 0, len(r.macros))
	for _, m := range r.macros {
		all = append(all, m)
	}
	r.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	offset, err := pagination.DecodeOrZero(pageToken)
	if err != nil {
		return nil, "", err
	}
	size := pagination.ResolvePageSize(pageSize, pagination.SmallDefaultPageSize)
	page, next := pagination.Page(all, offset, size)
	return page, next, nil
}

// Update applies a partial or full update to the macro named by updated.Name
// per the given update mask (empty mask = full replace).
func (r *Registry) Update(updated *uiautomationpb.Macro, mask []string) (*uiautomationpb.Macro, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.macros[updated.Name]
	if !ok {
		return nil, notFound(updated.Name)
	}
	if err := fieldmask.ValidateUpdateMask(mask, mutableFields); err != nil {
		return nil, err
	}
	if len(mask) == 0 {
		updated.CreateTime = existing.CreateTime
		updated.UpdateTime = time.Now()
		updated.ExecutionCount = existing.ExecutionCount
		r.macros[updated.Name] = updated
		return updated, nil
	}
	for _, path := range mask {
		switch path {
		case "displayName":
			existing.DisplayName = updated.DisplayName
		case "description":
			existing.Description = updated.Description
		case "actions":
			existing.Actions = updated.Actions
		case "parameters":
			existing.Parameters = updated.Parameters
		case "tags":
			existing.Tags = updated.Tags
		}
	}
	existing.UpdateTime = time.Now()
	return existing, nil
}

// Delete removes name unconditionally.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.macros[name]; !ok {
		return notFound(name)
	}
	delete(r.macros, name)
	return nil
}

// IncrementExecutionCount bumps name's persisted execution counter.
func (r *Registry) IncrementExecutionCount(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.macros[name]; ok {
		m.ExecutionCount++
	}
}

func notFound(name string) error {
	return apierror.New(codes.NotFound, apierror.ReasonMacroNotFound,
		"macro not found", map[string]string{"name": name})
}
