// internal/rfq/gate.go
package rfq

// Classification is the outcome of the confidence gate.
type Classification string

const (
	ClassificationAccept      Classification = "accept"
	ClassificationWithWarning Classification = "accept_with_warning"
	ClassificationReject      Classification = "reject"
)

// Classify applies the confidence gate to an extracted record. The sentinel
// record is always rejected. A confidence below the threshold downgrades the
// result to accept-with-warning; the field values themselves are kept intact.
func Classify(rec *StructuredRFQ, threshold float64) Classification {
	if rec == nil || rec.IsSentinel() {
		return ClassificationReject
	}

	if rec.MaterialConfidence < threshold || rec.IndustryConfidence < threshold {
		return ClassificationWithWarning
	}

	return ClassificationAccept
}
