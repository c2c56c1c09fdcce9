package injection

import (
	"fmt"
	"math"

	"github.com/pthm-cable/spray/timefunc"
)

// FlowType selects the closure used to determine injection speed.
type FlowType int

const (
	// FlowConstantVelocity injects at a prescribed speed Umag(t).
	FlowConstantVelocity FlowType = iota
	// FlowPressureDriven derives the speed from the injection pressure
	// Pinj(t) against the local carrier pressure.
	FlowPressureDriven
	// FlowRateAndDischarge derives the speed from the mass flow rate
	// through the annular cross-section with discharge coefficient Cd(t).
	FlowRateAndDischarge
)

// ParseFlowType maps a configuration string to a FlowType.
func ParseFlowType(s string) (FlowType, error) {
	switch s {
	case "constantVelocity":
		return FlowConstantVelocity, nil
	case "pressureDrivenVelocity":
		return FlowPressureDriven, nil
	case "flowRateAndDischarge":
		return FlowRateAndDischarge, nil
	default:
		return 0, fmt.Errorf("injection: unknown flowType %q", s)
	}
}

func (f FlowType) String() string {
	switch f {
	case FlowConstantVelocity:
		return "constantVelocity"
	case FlowPressureDriven:
		return "pressureDrivenVelocity"
	case FlowRateAndDischarge:
		return "flowRateAndDischarge"
	default:
		return fmt.Sprintf("FlowType(%d)", int(f))
	}
}

// FlowModel computes the injection speed. The injected direction always
// comes from the geometry sampler; flow models only set the magnitude.
type FlowModel interface {
	// Speed returns the injection speed at time t given the carrier
	// density and pressure at the injection point.
	Speed(t, rhoCarrier, pCarrier float64) float64
}

// ConstantVelocity injects at Umag(t) regardless of the carrier state.
type ConstantVelocity struct {
	Umag timefunc.Scalar
}

// Speed implements FlowModel.
func (m ConstantVelocity) Speed(t, _, _ float64) float64 {
	return m.Umag.Value(t)
}

// PressureDriven converts the pressure head Pinj(t) - pCarrier into speed.
// When the injection pressure falls below the carrier pressure the injector
// is momentarily not flowing; the speed clamps to zero rather than erroring.
type PressureDriven struct {
	Pinj timefunc.Scalar
}

// Speed implements FlowModel.
func (m PressureDriven) Speed(t, rhoCarrier, pCarrier float64) float64 {
	head := 2 * (m.Pinj.Value(t) - pCarrier) / rhoCarrier
	if head <= 0 {
		return 0
	}
	return math.Sqrt(head)
}

// DischargeFlow converts a time-varying mass flow rate through the annular
// cross-section into speed via the discharge coefficient Cd(t). The mass
// flow rate is the configured total mass shaped by the rate profile and
// normalized so it integrates to massTotal over the injection duration.
type DischargeFlow struct {
	cd      timefunc.Scalar
	profile timefunc.Scalar
	area    float64
	scale   float64 // massTotal / integral of profile over the active window
}

// NewDischargeFlow validates and builds the flowRateAndDischarge closure.
// A degenerate zero-area cross-section cannot carry a flow rate and is a
// configuration error here, not a divide-by-zero at evaluation time.
func NewDischargeFlow(cd, profile timefunc.Scalar, area, massTotal, soi, duration float64) (*DischargeFlow, error) {
	if area <= 0 {
		return nil, fmt.Errorf("injection: flowRateAndDischarge requires a non-zero annulus cross-section")
	}
	if massTotal <= 0 {
		return nil, fmt.Errorf("injection: flowRateAndDischarge requires massTotal > 0, got %g", massTotal)
	}
	norm := profile.Integrate(soi, soi+duration)
	if norm <= 0 {
		return nil, fmt.Errorf("injection: flowRateProfile integrates to %g over the injection window", norm)
	}
	return &DischargeFlow{
		cd:      cd,
		profile: profile,
		area:    area,
		scale:   massTotal / norm,
	}, nil
}

// MassFlowRate returns the instantaneous mass flow rate [kg/s] at time t.
func (m *DischargeFlow) MassFlowRate(t float64) float64 {
	return m.scale * m.profile.Value(t)
}

// Speed implements FlowModel.
func (m *DischargeFlow) Speed(t, rhoCarrier, _ float64) float64 {
	return m.MassFlowRate(t) / (rhoCarrier * m.area * m.cd.Value(t))
}

// annulusArea returns the annular cross-section area for inner/outer radii.
func annulusArea(rInner, rOuter float64) float64 {
	return math.Pi * (rOuter*rOuter - rInner*rInner)
}
