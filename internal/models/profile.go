// ABOUTME: Child profile model and the whole-form input used to create or edit it.
// ABOUTME: Validation runs locally before any store call.

package models

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	LearningStyles  = []string{"visual", "auditory", "kinesthetic", "mixed"}
	Genders         = []string{"female", "male", "nonbinary", "preferNot"}
	InterestOptions = []string{"Art", "STEM", "Sports", "Music", "Reading", "Nature", "Languages"}
)

type Profile struct {
	ID            string     `json:"-"`
	Name          string     `json:"name"`
	Age           string     `json:"age"`
	Gender        string     `json:"gender,omitempty"`
	LearningStyle string     `json:"learningStyle,omitempty"`
	Challenges    string     `json:"challenges,omitempty"`
	Interests     []string   `json:"interests"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// LastTouched is the most recent of UpdatedAt and CreatedAt.
func (p *Profile) LastTouched() time.Time {
	if p.UpdatedAt != nil {
		return *p.UpdatedAt
	}
	return p.CreatedAt
}

// ProfileInput is the complete profile form as submitted.
type ProfileInput struct {
	Name          string
	Age           string
	Gender        string
	LearningStyle string
	Challenges    string
	Interests     []string
}

// Normalize trims text fields and collapses Interests into an ordered set.
func (in ProfileInput) Normalize() ProfileInput {
	out := ProfileInput{
		Name:          strings.TrimSpace(in.Name),
		Age:           strings.TrimSpace(in.Age),
		Gender:        strings.TrimSpace(in.Gender),
		LearningStyle: strings.TrimSpace(in.LearningStyle),
		Challenges:    strings.TrimSpace(in.Challenges),
		Interests:     make([]string, 0, len(in.Interests)),
	}
	for _, interest := range in.Interests {
		interest = strings.TrimSpace(interest)
		if interest == "" || slices.Contains(out.Interests, interest) {
			continue
		}
		out.Interests = append(out.Interests, interest)
	}
	return out
}

func (in ProfileInput) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "Name is required"})
	}
	if !isNumeric(in.Age) {
		errs = append(errs, &ValidationError{Field: "age", Message: "Valid age is required"})
	}
	if in.LearningStyle != "" && !slices.Contains(LearningStyles, in.LearningStyle) {
		errs = append(errs, &ValidationError{Field: "learningStyle", Message: "unknown learning style " + strconv.Quote(in.LearningStyle)})
	}
	if in.Gender != "" && !slices.Contains(Genders, in.Gender) {
		errs = append(errs, &ValidationError{Field: "gender", Message: "unknown gender " + strconv.Quote(in.Gender)})
	}
	return errs.orNil()
}

// Fields returns the document body for the form. Every form field is
// present so a merge write replaces the whole form.
func (in ProfileInput) Fields() map[string]any {
	interests := in.Interests
	if interests == nil {
		interests = []string{}
	}
	return map[string]any{
		"name":          in.Name,
		"age":           in.Age,
		"gender":        in.Gender,
		"learningStyle": in.LearningStyle,
		"challenges":    in.Challenges,
		"interests":     interests,
	}
}

// InputFromProfile seeds an edit form with the stored values.
func InputFromProfile(p *Profile) ProfileInput {
	return ProfileInput{
		Name:          p.Name,
		Age:           p.Age,
		Gender:        p.Gender,
		LearningStyle: p.LearningStyle,
		Challenges:    p.Challenges,
		Interests:     slices.Clone(p.Interests),
	}
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}
