// ABOUTME: Favorite activity saved for a child.
// ABOUTME: Favorites are immutable once created; they can only be removed.

package models

import (
	"net/url"
	"strings"
	"time"
)

type Favorite struct {
	ID        string    `json:"-"`
	Name      string    `json:"name"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
}

type FavoriteInput struct {
	Name string
	Link string
}

func (in FavoriteInput) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "activity name is required"})
	}
	link := strings.TrimSpace(in.Link)
	if link == "" {
		errs = append(errs, &ValidationError{Field: "link", Message: "activity link is required"})
	} else if u, err := url.Parse(link); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, &ValidationError{Field: "link", Message: "activity link must be an absolute URL"})
	}
	return errs.orNil()
}

func (in FavoriteInput) Fields() map[string]any {
	return map[string]any{
		"name": strings.TrimSpace(in.Name),
		"link": strings.TrimSpace(in.Link),
	}
}
