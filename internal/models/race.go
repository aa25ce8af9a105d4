package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Race represents a scheduled race card entry in the system
type Race struct {
	ID         uuid.UUID `db:"id" json:"id" validate:"required"`
	RaceDate   time.Time `db:"race_date" json:"race_date" validate:"required"`
	Venue      string    `db:"venue" json:"venue" validate:"required"`
	RaceNumber int       `db:"race_number" json:"race_number" validate:"required,gt=0,lte=12"`
	RaceName   string    `db:"race_name" json:"race_name"`
	Distance   int       `db:"distance" json:"distance" validate:"required,gt=0"`
	Surface    string    `db:"surface" json:"surface" validate:"required,oneof=turf dirt"`
	Grade      string    `db:"grade" json:"grade"`
	Status     string    `db:"status" json:"status" validate:"oneof=scheduled started finished cancelled"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// IsUpcoming checks if the race hasn't started yet
func (r *Race) IsUpcoming() bool {
	return r.Status == "scheduled"
}

// Key returns the cache/lookup key of the race
func (r *Race) Key() RaceKey {
	return RaceKey{Date: r.RaceDate, Venue: r.Venue, RaceNumber: r.RaceNumber}
}

// CourseKey returns the course-characteristics key of the race
func (r *Race) CourseKey() CourseKey {
	return CourseKey{Venue: r.Venue, Surface: r.Surface, Distance: r.Distance}
}

// RaceKey identifies a race by (year, date, venue, race number)
type RaceKey struct {
	Date       time.Time `json:"date"`
	Venue      string    `json:"venue"`
	RaceNumber int       `json:"race_number"`
}

// ParseRaceKey builds a key from a YYYY-MM-DD date, venue and race number
func ParseRaceKey(date, venue string, raceNumber int) (RaceKey, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return RaceKey{}, fmt.Errorf("invalid race date %q: %w", date, err)
	}
	if strings.TrimSpace(venue) == "" {
		return RaceKey{}, ErrInvalidRaceKey
	}
	if raceNumber <= 0 {
		return RaceKey{}, ErrInvalidRaceKey
	}
	return RaceKey{Date: d, Venue: venue, RaceNumber: raceNumber}, nil
}

// Year returns the race year
func (k RaceKey) Year() int {
	return k.Date.Year()
}

// DatePrefix returns the key prefix shared by every race run on the same day
func (k RaceKey) DatePrefix() string {
	return fmt.Sprintf("%04d:%s", k.Year(), k.Date.Format("0102"))
}

// String returns the canonical representation year:MMDD:VENUE:race
func (k RaceKey) String() string {
	return fmt.Sprintf("%s:%s:%02d", k.DatePrefix(), strings.ToUpper(k.Venue), k.RaceNumber)
}
