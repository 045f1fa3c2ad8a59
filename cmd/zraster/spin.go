package main

import (
	"github.com/charmbracelet/harmonica"
)

// SpinAxis tracks the angle and angular velocity of one rotation axis. The
// velocity relaxes toward zero on a critically damped spring.
type SpinAxis struct {
	Angle    float64 // Degrees
	Velocity float64 // Degrees per frame

	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewSpinAxis creates an axis whose velocity decays at the given frame rate.
func NewSpinAxis(fps int) SpinAxis {
	return SpinAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances the angle by one frame and decays the velocity.
func (a *SpinAxis) Update() {
	a.Angle += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Spin holds pitch (x), yaw (y) and roll (z) spin state.
type Spin struct {
	Pitch, Yaw, Roll SpinAxis
	fps              int
}

// NewSpin creates a resting spin.
func NewSpin(fps int) *Spin {
	return &Spin{
		Pitch: NewSpinAxis(fps),
		Yaw:   NewSpinAxis(fps),
		Roll:  NewSpinAxis(fps),
		fps:   fps,
	}
}

// Update advances every axis by one frame.
func (s *Spin) Update() {
	s.Pitch.Update()
	s.Yaw.Update()
	s.Roll.Update()
}

// ApplyImpulse adds angular velocity, in degrees per frame.
func (s *Spin) ApplyImpulse(pitch, yaw, roll float64) {
	s.Pitch.Velocity += pitch
	s.Yaw.Velocity += yaw
	s.Roll.Velocity += roll
}

// Reset stops the spin and returns every angle to zero.
func (s *Spin) Reset() {
	s.Pitch = NewSpinAxis(s.fps)
	s.Yaw = NewSpinAxis(s.fps)
	s.Roll = NewSpinAxis(s.fps)
}
