/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * SendObject retry matrix (§4.8): the deterministic parameter rungs
 * tried when a device refuses an ObjectInfo/SendObject.
 */

package actor

import "github.com/swiftmtp/swiftmtp/protocol"

// SendObjectParameters is the 5-tuple (plus the 6th target-ladder
// flag) that controls how EncodeObjectInfo and the write target are
// chosen for one rung of the retry matrix.
type SendObjectParameters struct {
	UseEmptyDates                bool
	UseUndefinedObjectFormat     bool
	UseUnknownObjectInfoSize     bool
	OmitOptionalObjectInfoFields bool
	ZeroObjectInfoParentHandle   bool
	UseRootCommandParentHandle   bool
}

// Equal reports whether two parameter sets are identical.
func (p SendObjectParameters) Equal(other SendObjectParameters) bool {
	return p == other
}

// RetryContext carries the facts the matrix builder needs to decide
// which further rungs to append.
type RetryContext struct {
	IsRootParent                  bool
	AllowUnknownObjectInfoSizeRetry bool
	Parent                         *uint32 // nil if unknown
}

// SendObjectRetryParameters builds the deterministic retry matrix
// for a write refused with the given retry class, starting from
// primary (the parameters used on the first, failed attempt). It
// never emits a rung equal to primary.
func SendObjectRetryParameters(class protocol.RetryClass, primary SendObjectParameters, ctx RetryContext) []SendObjectParameters {
	var rungs []SendObjectParameters

	appendIfNew := func(p SendObjectParameters) {
		if p.Equal(primary) {
			return
		}
		for _, existing := range rungs {
			if existing.Equal(p) {
				return
			}
		}
		rungs = append(rungs, p)
	}

	switch class {
	case protocol.RetryClassInvalidParameter:
		flipped := primary
		if !flipped.UseUndefinedObjectFormat {
			flipped.UseUndefinedObjectFormat = true
		}
		if ctx.IsRootParent {
			flipped.ZeroObjectInfoParentHandle = true
		}
		appendIfNew(flipped)

		if ctx.AllowUnknownObjectInfoSizeRetry {
			withUnknownSize := flipped
			withUnknownSize.UseUnknownObjectInfoSize = true
			appendIfNew(withUnknownSize)
		}

	case protocol.RetryClassInvalidObjectHandle:
		if ctx.Parent != nil && *ctx.Parent != 0 {
			rootParent := primary
			rootParent.UseRootCommandParentHandle = true
			appendIfNew(rootParent)
		}

	case protocol.RetryClassTransientTransport:
		// Handled by TransientTransportRetryOnce instead: a retry with
		// parameters identical to primary can never survive appendIfNew's
		// dedupe, so the matrix itself has no rung to offer here.
	}

	return rungs
}

// TransientTransportRetryOnce reports whether the TransientTransport
// retry class warrants exactly one retry with identical parameters
// (§4.8). SendObjectRetryParameters cannot express "retry with
// parameters equal to primary" via appendIfNew (which dedupes
// against primary by design), so callers handling this class should
// retry the primary attempt once directly instead of consulting the
// matrix.
func TransientTransportRetryOnce(class protocol.RetryClass) bool {
	return class == protocol.RetryClassTransientTransport
}

// TargetLadderApplies reports whether the target ladder (varying
// where the write lands: root vs. named subfolder) should run on top
// of the parameter retries, per §4.8's "Target ladder fallback"
// rule.
func TargetLadderApplies(class protocol.RetryClass, parent *uint32) bool {
	switch class {
	case protocol.RetryClassInvalidParameter:
		return true
	case protocol.RetryClassInvalidObjectHandle:
		return parent != nil
	default:
		return false
	}
}
