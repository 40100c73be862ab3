package world

import (
	"errors"
	"fmt"
)

// ErrInvalidDomain is returned when a domain has a non-positive side.
var ErrInvalidDomain = errors.New("domain width and height must be positive")

// Domain is the rectangular simulation area.
type Domain struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Validate checks that both sides are positive.
func (d Domain) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrInvalidDomain, d.Width, d.Height)
	}
	return nil
}

// Area returns width × height.
func (d Domain) Area() float64 {
	return d.Width * d.Height
}

// Contains returns true if p lies in [0,W]×[0,H].
func (d Domain) Contains(p Position) bool {
	return p.X >= 0 && p.X <= d.Width && p.Y >= 0 && p.Y <= d.Height
}

// Clamp constrains p into the domain using BoundMargin.
func (d Domain) Clamp(p Position) Position {
	return p.ConstrainToBounds(d.Width, d.Height)
}

// String returns a summary of the domain.
func (d Domain) String() string {
	return fmt.Sprintf("Domain(%gx%g)", d.Width, d.Height)
}
