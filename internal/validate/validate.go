// Package validate holds the form validators used ahead of every store
// write. Validators are pure: same input, same output, no I/O. Field
// failures come back as a field→message map that callers surface
// inline; validation never produces a Go error.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"arvyax/internal/domain"
)

// Errors maps a field name to its validation message. A nil or empty
// map means the input passed.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool { return len(e) == 0 }

// First returns one failure message for single-line surfaces, or "".
func (e Errors) First() string {
	for _, msg := range e {
		return msg
	}
	return ""
}

// Required fails on empty or whitespace-only values.
func Required(v string) bool {
	return strings.TrimSpace(v) != ""
}

/// Email checks the local@domain.tld shape: at least one @, a dot after
// it, and no whitespace anywhere.
func Email(v string) bool {
	if strings.ContainsAny(v, " \t\n\r") {
		return false
	}
	at := strings.Index(v, "@")
	if at < 1 {
		return false
	}
	domainPart := v[at+1:]
	dot := strings.Index(domainPart, ".")
	return dot >= 1 && dot < len(domainPart)-1 && !strings.Contains(domainPart, "@")
}

// URL checks for an absolute URL with a scheme and host.
func URL(v string) bool {
	u, err := url.Parse(v)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// MaxLen reports whether v has at most n characters.
func MaxLen(v string, n int) bool {
	return utf8.RuneCountInString(v) <= n
}

// MinLen reports whether v has at least n characters.
func MinLen(v string, n int) bool {
	return utf8.RuneCountInString(v) >= n
}

// Field length limits shared by the forms.
const (
	TitleMax       = 255
	NameMax        = 255
	DescriptionMax = 1000
	BioMax         = 500
	LocationMax    = 100
	PasswordMin    = 8
)

func tooLong(field string, max int) string {
	return fmt.Sprintf("%s must be no more than %d characters", field, max)
}

func requiredMsg(field string) string {
	return fmt.Sprintf("%s is required", field)
}

// TaskInput carries the fields of the task create/edit form.
type TaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
}

// Task validates the task form.
func Task(in TaskInput) Errors {
	errs := Errors{}
	if !Required(in.Title) {
		errs["title"] = requiredMsg("Title")
	} else if !MaxLen(in.Title, TitleMax) {
		errs["title"] = tooLong("Title", TitleMax)
	}
	if !MaxLen(in.Description, DescriptionMax) {
		errs["description"] = tooLong("Description", DescriptionMax)
	}
	if !in.Status.Valid() {
		errs["status"] = fmt.Sprintf("Status must be one of: %s", joinTaskStatuses())
	}
	if !in.Priority.Valid() {
		errs["priority"] = fmt.Sprintf("Priority must be one of: %s", joinTaskPriorities())
	}
	return errs
}

// ProjectInput carries the fields of the project create/edit form.
type ProjectInput struct {
	Name        string
	Description string
	Status      domain.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
}

// Project validates the project form, including the cross-field rule
// that an end date may not precede the start date. The date failure is
// keyed on end_date so it renders next to that input.
func Project(in ProjectInput) Errors {
	errs := Errors{}
	if !Required(in.Name) {
		errs["name"] = requiredMsg("Name")
	} else if !MaxLen(in.Name, NameMax) {
		errs["name"] = tooLong("Name", NameMax)
	}
	if !MaxLen(in.Description, DescriptionMax) {
		errs["description"] = tooLong("Description", DescriptionMax)
	}
	if !in.Status.Valid() {
		errs["status"] = fmt.Sprintf("Status must be one of: %s", joinProjectStatuses())
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		errs["end_date"] = "End date cannot be earlier than start date"
	}
	return errs
}

// ProfileInput carries the fields of the profile form.
type ProfileInput struct {
	FullName  string
	AvatarURL string
	Bio       string
	Location  string
	Website   string
}

// Profile validates the profile form.
func Profile(in ProfileInput) Errors {
	errs := Errors{}
	if !Required(in.FullName) {
		errs["full_name"] = requiredMsg("Full name")
	} else if !MaxLen(in.FullName, NameMax) {
		errs["full_name"] = tooLong("Full name", NameMax)
	}
	if in.AvatarURL != "" && !URL(in.AvatarURL) {
		errs["avatar_url"] = "Please enter a valid URL"
	}
	if !MaxLen(in.Bio, BioMax) {
		errs["bio"] = tooLong("Bio", BioMax)
	}
	if !MaxLen(in.Location, LocationMax) {
		errs["location"] = tooLong("Location", LocationMax)
	}
	if in.Website != "" && !URL(in.Website) {
		errs["website"] = "Please enter a valid URL"
	}
	return errs
}

// Credentials validates the sign-up form.
func Credentials(email, password string) Errors {
	errs := Errors{}
	if !Required(email) {
		errs["email"] = requiredMsg("Email")
	} else if !Email(email) {
		errs["email"] = "Please enter a valid email address"
	}
	if !MinLen(password, PasswordMin) {
		errs["password"] = fmt.Sprintf("Password must be at least %d characters", PasswordMin)
	}
	return errs
}

func joinTaskStatuses() string {
	parts := make([]string, len(domain.TaskStatuses))
	for i, s := range domain.TaskStatuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func joinTaskPriorities() string {
	parts := make([]string, len(domain.TaskPriorities))
	for i, p := range domain.TaskPriorities {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}

func joinProjectStatuses() string {
	parts := make([]string, len(domain.ProjectStatuses))
	for i, s := range domain.ProjectStatuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
