// Package analysis implements the AnalysisTask kernels and the
// dispatch-sequence serialization consumed by storage metadata.
package analysis

import "github.com/kstarfusion/delta/internal/deltaerr"

// Kind names one of the recognised analysis kernels.
type Kind string

const (
	KindCrossPower       Kind = "cross_power"
	KindCrossPhase       Kind = "cross_phase"
	KindCoherence        Kind = "coherence"
	KindCrossCorrelation Kind = "cross_correlation"
	KindBicoherence      Kind = "bicoherence"
	KindSKW              Kind = "skw"
)

// ParseKind validates s against the recognised kernel names.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCrossPower, KindCrossPhase, KindCoherence, KindCrossCorrelation, KindBicoherence, KindSKW:
		return Kind(s), nil
	default:
		return "", deltaerr.NewUnknownAnalysisError(s)
	}
}

// OutputShape describes the shape a Kind's result takes so the storage
// layer can pre-allocate.
type OutputShape int

const (
	ShapeScalar OutputShape = iota
	ShapeVectorF
	ShapeVectorN
	ShapeMatrixFF
	ShapeMatrixFK
)

// Shape returns the output shape for kind given whether per-bin output was
// requested (kwargs.per_bin).
func (k Kind) Shape(perBin bool) OutputShape {
	switch k {
	case KindCrossPower, KindCrossPhase, KindCoherence:
		if perBin {
			return ShapeVectorF
		}
		return ShapeScalar
	case KindCrossCorrelation:
		return ShapeVectorN
	case KindBicoherence:
		return ShapeMatrixFF
	case KindSKW:
		return ShapeMatrixFK
	default:
		return ShapeScalar
	}
}
