package optim

import "math"

// LearningRateDecay adjusts the learning rate before each parameter
// update. Implementations may keep internal iteration state; a decay
// policy instance must not be shared between optimizers.
type LearningRateDecay interface {
	// Apply returns the learning rate for the upcoming update, given
	// the current rate, parameters and raw gradient.
	Apply(learningRate float64, params, gradient []float64) float64
}

// LogLinearDecay decays the learning rate as lr_0 / iter^slope, where
// lr_0 is the rate observed on the first call.
type LogLinearDecay struct {
	Slope float64

	base      float64
	iteration int
}

// NewLogLinearDecay creates a log-linear decay policy. A slope of 0.5
// gives the classic Robbins-Monro style schedule.
func NewLogLinearDecay(slope float64) *LogLinearDecay {
	return &LogLinearDecay{Slope: slope}
}

func (d *LogLinearDecay) Apply(learningRate float64, _, _ []float64) float64 {
	if d.iteration == 0 {
		d.base = learningRate
	}
	d.iteration++
	return d.base / math.Pow(float64(d.iteration), d.Slope)
}

// StepwiseDecay multiplies the learning rate by Factor every Interval
// updates.
type StepwiseDecay struct {
	Interval int
	Factor   float64

	iteration int
}

// NewStepwiseDecay creates a stepwise decay policy.
func NewStepwiseDecay(interval int, factor float64) *StepwiseDecay {
	return &StepwiseDecay{Interval: interval, Factor: factor}
}

func (d *StepwiseDecay) Apply(learningRate float64, _, _ []float64) float64 {
	d.iteration++
	if d.Interval > 0 && d.iteration%d.Interval == 0 {
		return learningRate * d.Factor
	}
	return learningRate
}
