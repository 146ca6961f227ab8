package domain

import (
	"fmt"
	"strings"
	"time"
)

// MinDescriptionLength is the shortest accepted project description.
const MinDescriptionLength = 10

// Project is a showcased piece of work. ImageURL is the primary image; it is
// not required to appear in Images. Images order is display order.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TechStack   []string  `json:"tech_stack"`
	GithubLink  *string   `json:"github_link,omitempty"`
	LiveDemo    *string   `json:"live_demo,omitempty"`
	ImageURL    *string   `json:"image_url"`
	Images      []string  `json:"images"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Gallery is the media slice of a project as loaded for a mutation.
type Gallery struct {
	ProjectID string
	Primary   *string
	Images    []string
	Version   int64
}

// ProjectInput carries the editable text fields of a project.
type ProjectInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
	GithubLink  *string  `json:"github_link"`
	LiveDemo    *string  `json:"live_demo"`
}

// Normalize trims text fields, drops blank tech entries and turns blank links
// into nil.
func (in *ProjectInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	stack := make([]string, 0, len(in.TechStack))
	for _, t := range in.TechStack {
		if t = strings.TrimSpace(t); t != "" {
			stack = append(stack, t)
		}
	}
	in.TechStack = stack

	in.GithubLink = trimOptional(in.GithubLink)
	in.LiveDemo = trimOptional(in.LiveDemo)
}

// Validate reports the first invalid field as an ErrInvalidInput.
func (in ProjectInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len([]rune(in.Description)) < MinDescriptionLength {
		return fmt.Errorf("%w: description must be at least %d characters", ErrInvalidInput, MinDescriptionLength)
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
