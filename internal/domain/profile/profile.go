package profile

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Availability string

const (
	AvailabilityAvailable     Availability = "Available"
	AvailabilityNotAvailable  Availability = "Not Available"
	AvailabilityOpportunities Availability = "Open to Opportunities"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type Proficiency string

const (
	LevelBeginner     Proficiency = "Beginner"
	LevelIntermediate Proficiency = "Intermediate"
	LevelAdvanced     Proficiency = "Advanced"
	LevelExpert       Proficiency = "Expert"
)

const avatarBaseURL = "https://i.pravatar.cc/150?u="

type Profile struct {
	ID                uuid.UUID    `json:"id"`
	Name              string       `json:"name"`
	Email             string       `json:"email"`
	Title             string       `json:"title"`
	Bio               string       `json:"bio"`
	ProfilePicture    string       `json:"profile_picture"`
	Location          string       `json:"location"`
	Phone             string       `json:"phone"`
	Website           string       `json:"website"`
	Availability      Availability `json:"availability"`
	Theme             Theme        `json:"theme"`
	TotalEndorsements int          `json:"total_endorsements"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

type Skill struct {
	ID                uuid.UUID     `json:"id"`
	ProfileID         uuid.UUID     `json:"profile_id"`
	Name              string        `json:"name"`
	Level             Proficiency   `json:"level"`
	YearsOfExperience *int          `json:"years_of_experience"`
	Endorsements      []Endorsement `json:"endorsements"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Endorsement is immutable once stored.
type Endorsement struct {
	ID             uuid.UUID `json:"id"`
	SkillID        uuid.UUID `json:"skill_id"`
	SkillName      string    `json:"skill_name"`
	EndorserName   string    `json:"endorser_name"`
	EndorserEmail  string    `json:"endorser_email"`
	EndorserAvatar string    `json:"endorser_avatar"`
	Message        string    `json:"message"`
	EndorsedAt     time.Time `json:"endorsed_at"`
}

type SocialLink struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	Platform  string    `json:"platform"`
	URL       string    `json:"url"`
	Icon      string    `json:"icon"`
}

type WorkExperience struct {
	ID           uuid.UUID  `json:"id"`
	ProfileID    uuid.UUID  `json:"profile_id"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	IsCurrent    bool       `json:"is_current"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	Achievements []string   `json:"achievements"`
}

// Aggregate is the denormalized view of a profile and everything it owns.
// Every slice is non-nil once built through NewAggregate.
type Aggregate struct {
	Profile
	Skills         []Skill          `json:"skills"`
	SocialLinks    []SocialLink     `json:"social_links"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Achievements   []string         `json:"achievements"`
	Interests      []string         `json:"interests"`
}

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrSkillNotFound       = errors.New("skill not found")
	ErrEmailTaken          = errors.New("email already in use")
	ErrInvalidAvailability = errors.New("invalid availability")
	ErrInvalidTheme        = errors.New("invalid theme")
	ErrInvalidProficiency  = errors.New("invalid proficiency level")
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityNotAvailable, AvailabilityOpportunities:
		return true
	}
	return false
}

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

func (p Proficiency) Valid() bool {
	switch p {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert:
		return true
	}
	return false
}

// Validate checks the fields a stored profile must always satisfy.
// Empty availability and theme are accepted and defaulted by ApplyDefaults.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return errors.New("email is required")
	}
	if p.Availability != "" && !p.Availability.Valid() {
		return ErrInvalidAvailability
	}
	if p.Theme != "" && !p.Theme.Valid() {
		return ErrInvalidTheme
	}
	return nil
}

func (p *Profile) ApplyDefaults() {
	if p.Theme == "" {
		p.Theme = ThemeLight
	}
	if p.Availability == "" {
		p.Availability = AvailabilityOpportunities
	}
}

func (s *Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("skill name is required")
	}
	if s.Level != "" && !s.Level.Valid() {
		return ErrInvalidProficiency
	}
	if s.YearsOfExperience != nil && *s.YearsOfExperience < 0 {
		return errors.New("years of experience cannot be negative")
	}
	return nil
}

func (w *WorkExperience) Validate() error {
	if strings.TrimSpace(w.Title) == "" || strings.TrimSpace(w.Company) == "" {
		return errors.New("work experience title and company are required")
	}
	if w.StartDate.IsZero() {
		return errors.New("work experience start date is required")
	}
	if w.EndDate != nil && !w.IsCurrent && w.EndDate.Before(w.StartDate) {
		return errors.New("work experience end date precedes start date")
	}
	return nil
}

// Normalize drops the end date of a current role.
func (w *WorkExperience) Normalize() {
	if w.IsCurrent {
		w.EndDate = nil
	}
	if w.Achievements == nil {
		w.Achievements = []string{}
	}
}

// Ongoing reports whether the role has no end: flagged current or undated.
func (w *WorkExperience) Ongoing() bool {
	return w.IsCurrent || w.EndDate == nil
}

// SortWorkExperience orders roles with ongoing ones first, then by start
// date, newest first. The sort is stable so equal entries keep store order.
func SortWorkExperience(items []WorkExperience) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Ongoing() != b.Ongoing() {
			return a.Ongoing()
		}
		return a.StartDate.After(b.StartDate)
	})
}

// SortEndorsements orders endorsements newest first.
func SortEndorsements(items []Endorsement) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EndorsedAt.After(items[j].EndorsedAt)
	})
}

// DefaultAvatar derives a stable avatar URL from an endorser email.
func DefaultAvatar(email string) string {
	return avatarBaseURL + url.QueryEscape(strings.TrimSpace(email))
}

// NewAggregate assembles an aggregate, replacing nil relations with empty
// slices and applying the ordering guarantees.
func NewAggregate(p Profile, skills []Skill, links []SocialLink, work []WorkExperience, achievements, interests []string) *Aggregate {
	if skills == nil {
		skills = []Skill{}
	}
	for i := range skills {
		if skills[i].Endorsements == nil {
			skills[i].Endorsements = []Endorsement{}
		}
		SortEndorsements(skills[i].Endorsements)
	}
	if links == nil {
		links = []SocialLink{}
	}
	if work == nil {
		work = []WorkExperience{}
	}
	for i := range work {
		work[i].Normalize()
	}
	SortWorkExperience(work)
	if achievements == nil {
		achievements = []string{}
	}
	if interests == nil {
		interests = []string{}
	}
	return &Aggregate{
		Profile:        p,
		Skills:         skills,
		SocialLinks:    links,
		WorkExperience: work,
		Achievements:   achievements,
		Interests:      interests,
	}
}

// Update is a partial update of the scalar profile fields. Nil means unchanged.
type Update struct {
	Name           *string
	Email          *string
	Title          *string
	Bio            *string
	ProfilePicture *string
	Location       *string
	Phone          *string
	Website        *string
	Availability   *Availability
	Theme          *Theme
}

func (u Update) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Title == nil && u.Bio == nil &&
		u.ProfilePicture == nil && u.Location == nil && u.Phone == nil &&
		u.Website == nil && u.Availability == nil && u.Theme == nil
}

type Repository interface {
	Create(ctx context.Context, agg *Aggregate) error
	Update(ctx context.Context, id uuid.UUID, u Update) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateTheme(ctx context.Context, id uuid.UUID, theme Theme) (Theme, error)

	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	ListSkills(ctx context.Context, profileID uuid.UUID) ([]Skill, error)
	ListSocialLinks(ctx context.Context, profileID uuid.UUID) ([]SocialLink, error)
	ListWorkExperience(ctx context.Context, profileID uuid.UUID) ([]WorkExperience, error)
	ListAchievements(ctx context.Context, profileID uuid.UUID) ([]string, error)
	ListInterests(ctx context.Context, profileID uuid.UUID) ([]string, error)
}

type EndorsementRepository interface {
	FindSkill(ctx context.Context, skillID uuid.UUID) (*Skill, error)
	ListEndorsements(ctx context.Context, skillID uuid.UUID) ([]Endorsement, error)
	ListEndorsementsByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]Endorsement, error)
	// Add stores the endorsement and recounts the owning profile's total in
	// the same unit of work.
	Add(ctx context.Context, profileID uuid.UUID, e *Endorsement) error
	// RecountTotal recomputes total_endorsements with one aggregate statement.
	RecountTotal(ctx context.Context, profileID uuid.UUID) (int, error)
}
