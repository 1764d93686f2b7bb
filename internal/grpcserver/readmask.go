package grpcserver

import (
	"time"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/pkg/fieldmask"
)

// The four Get* RPCs embedding ReadMaskRequest (Application, Window, Display,
// Macro) apply AIP-157 field filtering by hand: api/uiautomationpb messages
// are plain Go structs, not generated protobuf with presence bits, so
// "contains only the listed fields" is expressed here as zeroing every
// struct field absent from the filtered map, using pkg/fieldmask's map-level
// ApplyReadMask as the single source of mask semantics (union of paths, "*"
// short-circuit, identifier always kept, unknown paths ignored).

func applyApplicationReadMask(a *uiautomationpb.Application, mask []string) *uiautomationpb.Application {
	full := map[string]any{"name": a.Name, "displayName": a.DisplayName, "pid": a.PID}
	m := fieldmask.ApplyReadMask(full, mask, "name")
	out := &uiautomationpb.Application{Name: a.Name}
	if v, ok := m["displayName"]; ok {
		out.DisplayName = v.(string)
	}
	if v, ok := m["pid"]; ok {
		out.PID = v.(int)
	}
	return out
}

func applyWindowReadMask(w *uiautomationpb.Window, mask []string) *uiautomationpb.Window {
	full := map[string]any{
		"name": w.Name, "title": w.Title, "bounds": w.Bounds,
		"zIndex": w.ZIndex, "visible": w.Visible, "bundleId": w.BundleID,
	}
	m := fieldmask.ApplyReadMask(full, mask, "name")
	out := &uiautomationpb.Window{Name: w.Name}
	if v, ok := m["title"]; ok {
		out.Title = v.(string)
	}
	if v, ok := m["bounds"]; ok {
		out.Bounds = v.(uiautomationpb.Rect)
	}
	if v, ok := m["zIndex"]; ok {
		out.ZIndex = v.(int)
	}
	if v, ok := m["visible"]; ok {
		out.Visible = v.(bool)
	}
	if v, ok := m["bundleId"]; ok {
		out.BundleID = v.(string)
	}
	return out
}

func applyDisplayReadMask(d *uiautomationpb.Display, mask []string) *uiautomationpb.Display {
	full := map[string]any{
		"name": d.Name, "globalFrame": d.GlobalFrame, "visibleFrame": d.VisibleFrame,
		"scale": d.Scale, "isMain": d.IsMain,
	}
	m := fieldmask.ApplyReadMask(full, mask, "name")
	out := &uiautomationpb.Display{Name: d.Name}
	if v, ok := m["globalFrame"]; ok {
		out.GlobalFrame = v.(uiautomationpb.Rect)
	}
	if v, ok := m["visibleFrame"]; ok {
		out.VisibleFrame = v.(uiautomationpb.Rect)
	}
	if v, ok := m["scale"]; ok {
		out.Scale = v.(float64)
	}
	if v, ok := m["isMain"]; ok {
		out.IsMain = v.(bool)
	}
	return out
}

func applyMacroReadMask(mc *uiautomationpb.Macro, mask []string) *uiautomationpb.Macro {
	full := map[string]any{
		"name": mc.Name, "displayName": mc.DisplayName, "description": mc.Description,
		"actions": mc.Actions, "parameters": mc.Parameters, "tags": mc.Tags,
		"createTime": mc.CreateTime, "updateTime": mc.UpdateTime, "executionCount": mc.ExecutionCount,
	}
	m := fieldmask.ApplyReadMask(full, mask, "name")
	out := &uiautomationpb.Macro{Name: mc.Name}
	if v, ok := m["displayName"]; ok {
		out.DisplayName = v.(string)
	}
	if v, ok := m["description"]; ok {
		out.Description = v.(string)
	}
	if v, ok := m["actions"]; ok {
		out.Actions = v.([]uiautomationpb.MacroAction)
	}
	if v, ok := m["parameters"]; ok {
		out.Parameters = v.([]uiautomationpb.MacroParameter)
	}
	if v, ok := m["tags"]; ok {
		out.Tags = v.([]string)
	}
	if v, ok := m["createTime"]; ok {
		out.CreateTime = v.(time.Time)
	}
	if v, ok := m["updateTime"]; ok {
		out.UpdateTime = v.(time.Time)
	}
	if v, ok := m["executionCount"]; ok {
		out.ExecutionCount = v.(int64)
	}
	return out
}
