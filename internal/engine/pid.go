package engine

import (
	"time"

	"github.com/chewxy/math32"
)

// pidController is a PID regulator with anti-windup, grounded on
// other_examples/Ixian-fan-controller-go__pid.go's PIDController:
// same proportional/integral(clamped)/derivative shape and output
// clamp. Internal arithmetic runs in float32 via math32, mirroring the
// embedded system's native `float` numeric domain that SPEC_FULL's
// PID/duty components are modeled on.
type pidController struct {
	kp, ki, kd float32

	integral    float32
	prevError   float32
	prevTime    time.Time
	firstRun    bool
	integralMax float32
	min, max    float32
}

func newPIDController(kp, ki, kd, min, max, integralMax float64) *pidController {
	return &pidController{
		kp: float32(kp), ki: float32(ki), kd: float32(kd),
		min: float32(min), max: float32(max),
		integralMax: float32(integralMax),
		firstRun:    true,
	}
}

// calculate computes the clamped PID output for measured vs target, at
// time now. SPEC_FULL §4.2: "within each period, computation occurs
// once at the top" — callers are responsible for calling this exactly
// once per PID window.
func (p *pidController) calculate(measured, target float64, now time.Time) float64 {
	// Heating convention: error is target minus measured, so demand
	// rises while the process is below target (the inverse of Ixian's
	// cooling-fan convention, where error is current minus target).
	errVal := float32(target) - float32(measured)

	var dt float32 = 1
	if !p.firstRun {
		dt = float32(now.Sub(p.prevTime).Seconds())
	}

	proportional := p.kp * errVal

	integral := p.integral + errVal*dt
	integral = math32.Max(-p.integralMax, math32.Min(p.integralMax, integral))

	var derivative float32
	if !p.firstRun && dt > 0 {
		derivative = p.kd * (errVal - p.prevError) / dt
	}

	output := proportional + p.ki*integral + derivative
	output = math32.Max(p.min, math32.Min(p.max, output))

	p.integral = integral
	p.prevError = errVal
	p.prevTime = now
	p.firstRun = false

	return float64(output)
}

// reset clears accumulated state, used whenever resetPidTimer fires
// (step transitions, boost transitions, manual override changes).
func (p *pidController) reset() {
	p.integral = 0
	p.prevError = 0
	p.prevTime = time.Time{}
	p.firstRun = true
}
