package models

import (
	"fmt"
	"strings"
)

// Gradient positions understood by the engine
const (
	GradientNone   = "none"
	GradientMiddle = "middle"
	GradientFinish = "finish"
)

// CourseKey identifies a course layout
type CourseKey struct {
	Venue    string `json:"venue"`
	Surface  string `json:"surface"`
	Distance int    `json:"distance"`
}

// String returns the canonical course key
func (k CourseKey) String() string {
	return fmt.Sprintf("%s:%s:%d", strings.ToUpper(k.Venue), strings.ToLower(k.Surface), k.Distance)
}

// CourseProfile holds course characteristics. Any nil field is unknown and
// must be treated as having no effect.
type CourseProfile struct {
	Venue             string   `db:"venue" json:"venue"`
	Surface           string   `db:"surface" json:"surface"`
	Distance          int      `db:"distance" json:"distance"`
	StraightLength    *float64 `db:"straight_length" json:"straight_length,omitempty"`
	GradientPosition  *string  `db:"gradient_position" json:"gradient_position,omitempty"`
	InsideAdvantage   *float64 `db:"inside_advantage" json:"inside_advantage,omitempty"`
	OutsideAdvantage  *float64 `db:"outside_advantage" json:"outside_advantage,omitempty"`
	StandardFrontTime *float64 `db:"standard_front_time" json:"standard_front_time,omitempty"`
}

// HasFinishGradient reports whether a gradient sits on the run to the line.
// The second value is false when the gradient position is unknown.
func (c *CourseProfile) HasFinishGradient() (bool, bool) {
	if c == nil || c.GradientPosition == nil {
		return false, false
	}
	return strings.EqualFold(*c.GradientPosition, GradientFinish), true
}
