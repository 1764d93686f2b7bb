// Package fieldmask implements AIP-157 read masks and AIP-134 update masks
// over plain Go maps, the representation used by api/uiautomationpb's
// hand-modeled messages. See spec §4.1 and invariants P3/P4.
package fieldmask

import (
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"google.golang.org/grpc/codes"
)

// ApplyReadMask filters full (a map representation of a response message) down
// to the fields named in mask, always keeping identifierField regardless of
// whether it was requested. An empty mask, or one containing "*", returns full
// unmodified. Unknown paths are ignored silently, per §4.1.
func ApplyReadMask(full map[string]any, mask []string, identifierField string) map[string]any {
	if len(mask) == 0 {
		return full
	}
	for _, p := range mask {
		if p == "*" {
			return full
		}
	}
	out := make(map[string]any, len(mask)+1)
	if v, ok := full[identifierField]; ok {
		out[identifierField] = v
	}
	for _, p := range mask {
		if v, ok := full[p]; ok {
			out[p] = v
		}
	}
	return out
}

// ValidateUpdateMask checks that every path in mask is a declared mutable
// field of the resource; unknown paths fail INVALID_ARGUMENT per §4.1/P4.
func ValidateUpdateMask(mask []string, mutableFields map[string]bool) error {
	for _, p := range mask {
		if !mutableFields[p] {
			return apierror.New(codes.InvalidArgument, apierror.ReasonUnknownFieldPath,
				"unknown update_mask path: "+p, map[string]string{"path": p})
		}
	}
	return nil
}

// ApplyUpdate merges updates into target. If mask is empty, every field in
// allFields is replaced by updates (clearing to zero value/absent if updates
// lacks it) — a full replacement per AIP-134. If mask is non-empty, only the
// listed paths are copied from updates into target.
func ApplyUpdate(target, updates map[string]any, mask []string, allFields []string) map[string]any {
	out := make(map[string]any, len(target))
	for k, v := range target {
		out[k] = v
	}
	if len(mask) == 0 {
		for _, f := range allFields {
			if v, ok := updates[f]; ok {
				out[f] = v
			} else {
				delete(out, f)
			}
		}
		return out
	}
	for _, p := range mask {
		if v, ok := updates[p]; ok {
			out[p] = v
		} else {
			delete(out, p)
		}
	}
	return out
}
