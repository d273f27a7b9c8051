package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Project codes are 3-6 uppercase letters followed by 2-4 digits.
var shortIDPattern = regexp.MustCompile(`^[A-Z]{3,6}[0-9]{2,4}$`)

// Project owns tasks, dependencies and import jobs. ShortID is the
// human-facing code used on the command line.
type Project struct {
	ID        string
	ShortID   string
	Name      string
	StartDate time.Time
	EndDate   *time.Time
	Status    ProjectStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeShortID upper-cases and trims a user-supplied project code.
func NormalizeShortID(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (p *Project) ValidateShortID() error {
	if p.ShortID == "" {
		return errors.New("project code is required")
	}
	if !shortIDPattern.MatchString(p.ShortID) {
		return fmt.Errorf("project code %q must be 3-6 uppercase letters followed by 2-4 digits (e.g. WEB01)", p.ShortID)
	}
	return nil
}

// Validate checks the fields a stored project must carry.
func (p *Project) Validate() error {
	if err := p.ValidateShortID(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("project name is required")
	}
	if p.StartDate.IsZero() {
		return errors.New("project start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return errors.New("project end date must not be before start date")
	}
	if p.Status != "" && !ValidProjectStatuses[string(p.Status)] {
		return fmt.Errorf("invalid project status: %q", p.Status)
	}
	return nil
}

// DisplayID prefers ShortID and falls back to the first 8 characters of ID.
func (p *Project) DisplayID() string {
	if p.ShortID != "" {
		return p.ShortID
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
