package macro

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/element"
	"github.com/nmxmxh/desktop-automation-service/internal/registry/window"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/names"
	"google.golang.org/grpc/codes"
)

// parentPID best-effort derives the owning process id from a macro's parent
// resource (applications/{pid}, a window, or a PID-scoped child collection).
// Resources outside the applications/{pid} tree (e.g. "sessions/{id}") have
// no PID and this returns 0.
func parentPID(parent string) int {
	if wn, err := names.ParseWindowName(parent); err == nil {
		return wn.PID
	}
	if an, err := names.ParseApplicationName(parent); err == nil && !an.IsWildcard {
		return an.PID
	}
	for _, collection := range []string{"observations", "inputs", "elements"} {
		if cn, err := names.ParseChildName(parent, collection); err == nil {
			return cn.PID
		}
	}
	return 0
}

// DefaultWaitTimeout is the default timeout for a condition-wait action when
// the action doesn't specify one.
const DefaultWaitTimeout = 30 * time.Second

// ConditionPollInterval is the fixed poll interval for wait-on-condition and
// while-loop actions.
const ConditionPollInterval = 500 * time.Millisecond

// MacroContext carries per-execution state through the action interpreter.
type MacroContext struct {
	Variables  map[string]string
	Parameters map[string]string
	Parent     string
	PID        int
	Deadline   time.Time
}

// Result summarizes one Execute call.
type Result struct {
	ActionsRun int
}

// Executor interprets a Macro's action list against the platform adapter and
// element registry. Per §4.8 "Isolation from concurrency", at most one
// Execute runs at a time; concurrent callers queue on execMu.
type Executor struct {
	execMu   sync.Mutex
	sys      platform.SystemOperations
	elements *element.Registry
	windows  *window.Registry
	log      *zap.Logger
}

func NewExecutor(sys platform.SystemOperations, elements *element.Registry, windows *window.Registry, log *zap.Logger) *Executor {
	return &Executor{sys: sys, elements: elements, windows: windows, log: log}
}

// Execute validates parameters, builds a MacroContext with a monotonic
// deadline, and interprets m.Actions in order.
func (e *Executor) Execute(ctx context.Context, m *uiautomationpb.Macro, paramValues map[string]string, parent string, timeout time.Duration) (Result, error) {
	e.execMu.Lock()
	defer e.execMu.Unlock()

	mc := &MacroContext{
		Variables:  make(map[string]string),
		Parameters: make(map[string]string),
		Parent:     parent,
		PID:        parentPID(parent),
	}
	for _, p := range m.Parameters {
		v, ok := paramValues[p.Name]
		if !ok {
			if p.Required {
				return Result{}, apierror.New(codes.InvalidArgument, apierror.ReasonRequiredFieldMissing,
					"missing required macro parameter", map[string]string{"field": p.Name})
			}
			v = p.Default
		}
		mc.Parameters[p.Name] = v
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	mc.Deadline = time.Now().Add(timeout)

	run := 0
	if err := e.runActions(ctx, mc, m.Actions, &run); err != nil {
		return Result{ActionsRun: run}, err
	}
	return Result{ActionsRun: run}, nil
}

func (e *Executor) runActions(ctx context.Context, mc *MacroContext, actions []uiautomationpb.MacroAction, run *int) error {
	for _, a := range actions {
		if time.Now().After(mc.Deadline) {
			return apierror.New(codes.Internal, apierror.ReasonTimeout, "macro execution deadline exceeded", nil)
		}
		if err := e.runAction(ctx, mc, a, run); err != nil {
			return err
		}
		*run++
	}
	return nil
}

func (e *Executor) runAction(ctx context.Context, mc *MacroContext, a uiautomationpb.MacroAction, run *int) error {
	switch a.Kind {
	case "input":
		return e.runInput(ctx, mc, a.Input)
	case "wait":
		return e.runWait(ctx, mc, a.Wait)
	case "conditional":
		return e.runConditional(ctx, mc, a.Conditional, run)
	case "loop":
		return e.runLoop(ctx, mc, a.Loop, run)
	case "assign":
		return e.runAssign(mc, a.Assign)
	case "methodCall":
		return e.runMethodCall(ctx, mc, a.MethodCall)
	default:
		return apierror.New(codes.InvalidArgument, apierror.ReasonUnknownMethodCall,
			"unknown macro action kind", map[string]string{"kind": a.Kind})
	}
}

func (e *Executor) runInput(ctx context.Context, mc *MacroContext, in *uiautomationpb.InputAction) error {
	if in == nil {
		return nil
	}
	text := Substitute(in.Text, mc.Variables, mc.Parameters)
	return e.sys.SynthesizeTyping(ctx, text)
}

func (e *Executor) runWait(ctx context.Context, mc *MacroContext, w *uiautomationpb.WaitAction) error {
	if w == nil {
		return nil
	}
	if w.Kind == "fixed" {
		d := time.Duration(w.DurationSeconds * float64(time.Second))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	deadline := time.Now().Add(timeout)
	interval := w.PollInterval
	if interval <= 0 {
		interval = ConditionPollInterval
	}
	for {
		ok, err := e.evalCondition(ctx, mc, w.Condition)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return apierror.New(codes.Internal, apierror.ReasonTimeout, "wait condition timed out", nil)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (e *Executor) runConditional(ctx context.Context, mc *MacroContext, c *uiautomationpb.ConditionalAction, run *int) error {
	if c == nil {
		return nil
	}
	ok, err := e.evalCondition(ctx, mc, c.Condition)
	if err != nil {
		return err
	}
	if ok {
		return e.runActions(ctx, mc, c.Then, run)
	}
	return e.runActions(ctx, mc, c.Else, run)
}

func (e *Executor) runLoop(ctx context.Context, mc *MacroContext, l *uiautomationpb.LoopAction, run *int) error {
	if l == nil {
		return nil
	}
	switch l.Kind {
	case "count":
		for i := 0; i < l.Count; i++ {
			if time.Now().After(mc.Deadline) {
				return apierror.New(codes.Internal, apierror.ReasonTimeout, "macro execution deadline exceeded", nil)
			}
			if err := e.runActions(ctx, mc, l.Body, run); err != nil {
				return err
			}
		}
		return nil
	case "while":
		for {
			if time.Now().After(mc.Deadline) {
				return apierror.New(codes.Internal, apierror.ReasonTimeout, "macro execution deadline exceeded", nil)
			}
			ok, err := e.evalCondition(ctx, mc, l.While)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if err := e.runActions(ctx, mc, l.Body, run); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(ConditionPollInterval):
			}
		}
	case "forEach":
		items, err := e.forEachItems(ctx, mc, l)
		if err != nil {
			return err
		}
		for _, item := range items {
			if time.Now().After(mc.Deadline) {
				return apierror.New(codes.Internal, apierror.ReasonTimeout, "macro execution deadline exceeded", nil)
			}
			if l.ItemVariable != "" {
				mc.Variables[l.ItemVariable] = item
			}
			if err := e.runActions(ctx, mc, l.Body, run); err != nil {
				return err
			}
		}
		return nil
	default:
		return apierror.New(codes.InvalidArgument, apierror.ReasonUnknownMethodCall,
			"unknown loop kind", map[string]string{"kind": l.Kind})
	}
}

func (e *Executor) forEachItems(ctx context.Context, mc *MacroContext, l *uiautomationpb.LoopAction) ([]string, error) {
	switch l.ForEachSelector {
	case "literal":
		var items []string
		for _, line := range strings.Split(l.ForEachValue, "\n") {
			for _, v := range strings.Split(line, ",") {
				v = strings.TrimSpace(v)
				if v != "" {
					items = append(items, v)
				}
			}
		}
		return items, nil
	case "elementSelector":
		sel, err := parseSelector(l.ForEachValue)
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, el := range e.elements.ListByPID(mc.PID) {
			if matchSelector(sel, el.Attributes) {
				ids = append(ids, el.ID)
			}
		}
		return ids, nil
	case "windowTitlePattern":
		re, err := regexp.Compile(l.ForEachValue)
		if err != nil {
			return nil, apierror.New(codes.InvalidArgument, apierror.ReasonInvalidRegex,
				"invalid windowTitlePattern", map[string]string{"pattern": l.ForEachValue})
		}
		entries, err := e.windows.ListForPID(ctx, mc.PID)
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, en := range entries {
			if re.MatchString(en.Title) {
				ids = append(ids, strconv.Itoa(en.WindowID))
			}
		}
		return ids, nil
	default:
		return nil, apierror.New(codes.InvalidArgument, apierror.ReasonUnknownMethodCall,
			"unknown forEach selector", map[string]string{"selector": l.ForEachSelector})
	}
}

// matchSelector reports whether an element's attributes satisfy sel.
// Attributes are expected to carry "role" and "text" keys, per the element
// registry's attribute map (§4.6).
func matchSelector(sel Selector, attrs map[string]string) bool {
	switch sel.Kind {
	case "role":
		return attrs["role"] == sel.Value
	case "text":
		return attrs["text"] == sel.Value
	case "textContains":
		return strings.Contains(attrs["text"], sel.Value)
	case "textRegex":
		re, err := regexp.Compile(sel.Value)
		if err != nil {
			return false
		}
		return re.MatchString(attrs["text"])
	default:
		return false
	}
}

// runAssign implements §4.8's assign action. Element-attribute assignment is
// declared in the taxonomy but deliberately unimplemented — it is rejected
// deterministically rather than silently no-op'd.
func (e *Executor) runAssign(mc *MacroContext, a *uiautomationpb.AssignAction) error {
	if a == nil {
		return nil
	}
	switch a.SourceKind {
	case "literal":
		mc.Variables[a.Variable] = a.Value
	case "parameter":
		mc.Variables[a.Variable] = mc.Parameters[a.Value]
	case "expression":
		mc.Variables[a.Variable] = Substitute(a.Value, mc.Variables, mc.Parameters)
	case "elementAttribute":
		return apierror.New(codes.InvalidArgument, apierror.ReasonUnsupportedAssignSrc,
			"elementAttribute assign source is not implemented", map[string]string{"variable": a.Variable})
	default:
		return apierror.New(codes.InvalidArgument, apierror.ReasonUnsupportedAssignSrc,
			"unknown assign source", map[string]string{"sourceKind": a.SourceKind})
	}
	return nil
}

func (e *Executor) runMethodCall(ctx context.Context, mc *MacroContext, m *uiautomationpb.MethodCallAction) error {
	if m == nil {
		return nil
	}
	switch m.Method {
	case "ClickElement":
		elementID := Substitute(m.Args["elementId"], mc.Variables, mc.Parameters)
		el, err := e.elements.Get(elementID)
		if err != nil {
			return err
		}
		if el.Bounds == nil {
			return apierror.New(codes.FailedPrecondition, apierror.ReasonElementNoBounds,
				"element has no bounds", map[string]string{"elementId": elementID})
		}
		cx := el.Bounds.X + el.Bounds.W/2
		cy := el.Bounds.Y + el.Bounds.H/2
		return e.sys.SynthesizeClick(ctx, cx, cy, "left")
	case "TypeText":
		text := Substitute(m.Args["text"], mc.Variables, mc.Parameters)
		return e.sys.SynthesizeTyping(ctx, text)
	default:
		return apierror.New(codes.InvalidArgument, apierror.ReasonUnknownMethodCall,
			"unknown method call", map[string]string{"method": m.Method})
	}
}

// evalCondition evaluates a MacroCondition per §4.8's grammar.
func (e *Executor) evalCondition(ctx context.Context, mc *MacroContext, c *uiautomationpb.MacroCondition) (bool, error) {
	if c == nil {
		return false, apierror.New(codes.InvalidArgument, apierror.ReasonUnspecifiedEnum, "missing condition", nil)
	}
	switch c.Kind {
	case "elementExists":
		sel, err := parseSelector(c.Selector)
		if err != nil {
			return false, err
		}
		for _, el := range e.elements.ListByPID(mc.PID) {
			if matchSelector(sel, el.Attributes) {
				return true, nil
			}
		}
		return false, nil
	case "windowExists":
		re, err := regexp.Compile(c.WindowPattern)
		if err != nil {
			return false, apierror.New(codes.InvalidArgument, apierror.ReasonInvalidRegex,
				"invalid windowExists pattern", map[string]string{"pattern": c.WindowPattern})
		}
		entries, err := e.windows.ListForPID(ctx, mc.PID)
		if err != nil {
			return false, err
		}
		for _, en := range entries {
			if re.MatchString(en.Title) {
				return true, nil
			}
		}
		return false, nil
	case "applicationRunning":
		return e.sys.IsApplicationRunning(ctx, c.PID), nil
	case "variableEquals":
		v, ok := mc.Variables[c.Variable]
		if !ok {
			v = mc.Parameters[c.Variable]
		}
		return v == c.EqualsValue, nil
	case "compound":
		return e.evalCompound(ctx, mc, c)
	default:
		return false, apierror.New(codes.InvalidArgument, apierror.ReasonUnspecifiedEnum,
			"unknown condition kind", map[string]string{"kind": c.Kind})
	}
}

func (e *Executor) evalCompound(ctx context.Context, mc *MacroContext, c *uiautomationpb.MacroCondition) (bool, error) {
	switch c.CompoundOp {
	case "NOT":
		if len(c.CompoundOperands) != 1 {
			return false, apierror.New(codes.InvalidArgument, apierror.ReasonUnspecifiedEnum,
				"NOT requires exactly one operand", nil)
		}
		v, err := e.evalCondition(ctx, mc, &c.CompoundOperands[0])
		if err != nil {
			return false, err
		}
		return !v, nil
	case "AND":
		for i := range c.CompoundOperands {
			v, err := e.evalCondition(ctx, mc, &c.CompoundOperands[i])
			if err != nil {
				return false, err
			}
			if !v {
				return false, nil
			}
		}
		return true, nil
	case "OR":
		for i := range c.CompoundOperands {
			v, err := e.evalCondition(ctx, mc, &c.CompoundOperands[i])
			if err != nil {
				return false, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, apierror.New(codes.InvalidArgument, apierror.ReasonUnspecifiedEnum,
			"compound condition with unspecified operator", map[string]string{"op": c.CompoundOp})
	}
}

// Selector is a parsed element selector (§4.8).
type Selector struct {
	Kind  string // "role", "text", "textContains", "textRegex"
	Value string
}

func parseSelector(s string) (Selector, error) {
	switch {
	case strings.HasPrefix(s, "role:"):
		return Selector{Kind: "role", Value: strings.TrimPrefix(s, "role:")}, nil
	case strings.HasPrefix(s, "text:"):
		return Selector{Kind: "text", Value: strings.TrimPrefix(s, "text:")}, nil
	case strings.HasPrefix(s, "textContains:"):
		return Selector{Kind: "textContains", Value: strings.TrimPrefix(s, "textContains:")}, nil
	case strings.HasPrefix(s, "textRegex:"):
		return Selector{Kind: "textRegex", Value: strings.TrimPrefix(s, "textRegex:")}, nil
	default:
		return Selector{Kind: "role", Value: s}, nil
	}
}

// Substitute replaces ${name} tokens with, in order, a variable then a
// parameter; unknown names are left intact (§4.8/P13).
func Substitute(text string, variables, parameters map[string]string) string {
	var b strings.Builder
	for i := 0; i < len(text); {
		if text[i] == '$' && i+1 < len(text) && text[i+1] == '{' {
			end := strings.IndexByte(text[i+2:], '}')
			if end >= 0 {
				name := text[i+2 : i+2+end]
				if v, ok := variables[name]; ok {
					b.WriteString(v)
				} else if v, ok := parameters[name]; ok {
					b.WriteString(v)
				} else {
					b.WriteString("${" + name + "}")
				}
				i += 2 + end + 1
				continue
			}
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}
