// Package catalog manages the skills and work experience shown next to
// projects.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("entry not found")
	ErrInvalidInput = errors.New("invalid input")
)

const dateLayout = "2006-01-02"

// Categories lists the accepted skill categories.
var Categories = []string{"Frontend", "Backend", "Tools", "Soft Skills", "Other"}

type Skill struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Proficiency int       `json:"proficiency"`
	Icon        *string   `json:"icon,omitempty"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SkillInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Proficiency int     `json:"proficiency"`
	Icon        *string `json:"icon"`
	Featured    bool    `json:"featured"`
}

// Normalize trims fields and matches the category case-insensitively.
func (in *SkillInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	for _, c := range Categories {
		if strings.EqualFold(c, in.Category) {
			in.Category = c
		}
	}
	if in.Icon != nil {
		icon := strings.TrimSpace(*in.Icon)
		if icon == "" {
			in.Icon = nil
		} else {
			in.Icon = &icon
		}
	}
}

func (in SkillInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !validCategory(in.Category) {
		return fmt.Errorf("%w: category must be one of %s", ErrInvalidInput, strings.Join(Categories, ", "))
	}
	if in.Proficiency < 1 || in.Proficiency > 10 {
		return fmt.Errorf("%w: proficiency must be between 1 and 10", ErrInvalidInput)
	}
	return nil
}

func validCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Experience is one position. EndDate is nil while Current is true.
type Experience struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Current     bool      `json:"current"`
	Description []string  `json:"description"`
	Skills      []string  `json:"skills"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ExperienceInput struct {
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	StartDate   string   `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Current     bool     `json:"current"`
	Description []string `json:"description"`
	Skills      []string `json:"skills"`
}

// Normalize trims fields, drops blank list entries and clears EndDate for a
// current position.
func (in *ExperienceInput) Normalize() {
	in.Company = strings.TrimSpace(in.Company)
	in.Position = strings.TrimSpace(in.Position)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.Description = compact(in.Description)
	in.Skills = compact(in.Skills)

	if in.EndDate != nil {
		end := strings.TrimSpace(*in.EndDate)
		in.EndDate = &end
		if end == "" {
			in.EndDate = nil
		}
	}
	if in.Current {
		in.EndDate = nil
	}
}

func (in ExperienceInput) Validate() error {
	if in.Company == "" {
		return fmt.Errorf("%w: company is required", ErrInvalidInput)
	}
	if in.Position == "" {
		return fmt.Errorf("%w: position is required", ErrInvalidInput)
	}
	start, err := time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if in.Current {
		return nil
	}
	if in.EndDate == nil {
		return fmt.Errorf("%w: end_date is required unless current", ErrInvalidInput)
	}
	end, err := time.Parse(dateLayout, *in.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	return nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
