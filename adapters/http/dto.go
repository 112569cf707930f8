package http

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/devprofile/internal/domain/profile"
)

const dateLayout = "2006-01-02"

// Profile DTOs
type EndorsementDTO struct {
	ID         uuid.UUID   `json:"id"`
	SkillID    uuid.UUID   `json:"skillId"`
	SkillName  string      `json:"skillName"`
	EndorsedBy EndorserDTO `json:"endorsedBy"`
	Message    string      `json:"message,omitempty"`
	EndorsedAt time.Time   `json:"endorsedAt"`
}

type EndorserDTO struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// SkillDTO and ProfileDTO repeat the id as _id, which the web client keys on.
type SkillDTO struct {
	ID                uuid.UUID        `json:"id"`
	LegacyID          uuid.UUID        `json:"_id"`
	Name              string           `json:"name"`
	Level             string           `json:"level"`
	YearsOfExperience *int             `json:"yearsOfExperience,omitempty"`
	Endorsements      []EndorsementDTO `json:"endorsements"`
}

type SocialLinkDTO struct {
	ID       uuid.UUID `json:"id"`
	Platform string    `json:"platform"`
	URL      string    `json:"url"`
	Icon     string    `json:"icon"`
}

type WorkExperienceDTO struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	StartDate    string    `json:"startDate"`
	EndDate      *string   `json:"endDate"`
	Current      bool      `json:"current"`
	Location     string    `json:"location,omitempty"`
	Description  string    `json:"description,omitempty"`
	Achievements []string  `json:"achievements"`
}

type ProfileDTO struct {
	ID                uuid.UUID           `json:"id"`
	LegacyID          uuid.UUID           `json:"_id"`
	Name              string              `json:"name"`
	Email             string              `json:"email"`
	Title             string              `json:"title"`
	Bio               string              `json:"bio"`
	ProfilePicture    string              `json:"profilePicture"`
	Location          string              `json:"location"`
	Phone             string              `json:"phone"`
	Website           string              `json:"website"`
	Availability      string              `json:"availability"`
	Theme             string              `json:"theme"`
	TotalEndorsements int                 `json:"totalEndorsements"`
	Skills            []SkillDTO          `json:"skills"`
	SocialLinks       []SocialLinkDTO     `json:"socialLinks"`
	WorkExperience    []WorkExperienceDTO `json:"workExperience"`
	Achievements      []string            `json:"achievements"`
	Interests         []string            `json:"interests"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type StatsDTO struct {
	TotalSkills         int `json:"totalSkills"`
	TotalEndorsements   int `json:"totalEndorsements"`
	TotalWorkExperience int `json:"totalWorkExperience"`
	TotalSocialLinks    int `json:"totalSocialLinks"`
	ProfileCompleteness int `json:"profileCompleteness"`
}

// Requests
type SkillRequest struct {
	Name              string `json:"name" binding:"required"`
	Level             string `json:"level"`
	YearsOfExperience *int   `json:"yearsOfExperience"`
}

type SocialLinkRequest struct {
	Platform string `json:"platform" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Icon     string `json:"icon"`
}

type WorkExperienceRequest struct {
	Title        string   `json:"title" binding:"required"`
	Company      string   `json:"company" binding:"required"`
	StartDate    string   `json:"startDate" binding:"required"`
	EndDate      string   `json:"endDate"`
	Current      bool     `json:"current"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

type CreateProfileRequest struct {
	Name           string                  `json:"name"`
	Email          string                  `json:"email"`
	Title          string                  `json:"title"`
	Bio            string                  `json:"bio"`
	ProfilePicture string                  `json:"profilePicture"`
	Location       string                  `json:"location"`
	Phone          string                  `json:"phone"`
	Website        string                  `json:"website"`
	Availability   string                  `json:"availability"`
	Theme          string                  `json:"theme"`
	Skills         []SkillRequest          `json:"skills" binding:"dive"`
	SocialLinks    []SocialLinkRequest     `json:"socialLinks" binding:"dive"`
	WorkExperience []WorkExperienceRequest `json:"workExperience" binding:"dive"`
	Achievements   []string                `json:"achievements"`
	Interests      []string                `json:"interests"`
}

// UpdateProfileRequest uses pointers so absent fields stay untouched.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Title          *string `json:"title"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture"`
	Location       *string `json:"location"`
	Phone          *string `json:"phone"`
	Website        *string `json:"website"`
	Availability   *string `json:"availability"`
	Theme          *string `json:"theme"`
}

type UpdateThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

type EndorseRequest struct {
	EndorsedBy struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		Avatar string `json:"avatar"`
	} `json:"endorsedBy"`
	Message string `json:"message"`
}

// GenerateBioRequest carries the profile snapshot as the client holds it.
// Tone stays raw so that a malformed value degrades to the default tone.
type GenerateBioRequest struct {
	Profile *BioProfileRequest `json:"profile"`
	Tone    json.RawMessage    `json:"tone"`
}

// ToneString returns the tone when it was sent as a JSON string.
func (req *GenerateBioRequest) ToneString() string {
	var tone string
	if err := json.Unmarshal(req.Tone, &tone); err != nil {
		return ""
	}
	return tone
}

type BioProfileRequest struct {
	Name     string     `json:"name"`
	Title    string     `json:"title"`
	Location string     `json:"location"`
	Skills   []BioSkill `json:"skills"`
	WorkExperience []struct {
		Title     string `json:"title"`
		Company   string `json:"company"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Current   bool   `json:"current"`
	} `json:"workExperience"`
	Achievements []string `json:"achievements"`
	Interests    []string `json:"interests"`
}

// BioSkill accepts either {"name": "Go"} or a bare "Go". Anything else
// decodes to an empty name and is dropped.
type BioSkill struct {
	Name string
}

func (s *BioSkill) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &s.Name); err == nil {
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		s.Name = obj.Name
	}
	return nil
}

func ToEndorsementDTO(e profile.Endorsement) EndorsementDTO {
	return EndorsementDTO{
		ID:        e.ID,
		SkillID:   e.SkillID,
		SkillName: e.SkillName,
		EndorsedBy: EndorserDTO{
			Name:   e.EndorserName,
			Email:  e.EndorserEmail,
			Avatar: e.EndorserAvatar,
		},
		Message:    e.Message,
		EndorsedAt: e.EndorsedAt,
	}
}

func ToEndorsementDTOs(items []profile.Endorsement) []EndorsementDTO {
	dtos := make([]EndorsementDTO, len(items))
	for i, e := range items {
		dtos[i] = ToEndorsementDTO(e)
	}
	return dtos
}

func ToSkillDTO(s *profile.Skill) SkillDTO {
	return SkillDTO{
		ID:                s.ID,
		LegacyID:          s.ID,
		Name:              s.Name,
		Level:             string(s.Level),
		YearsOfExperience: s.YearsOfExperience,
		Endorsements:      ToEndorsementDTOs(s.Endorsements),
	}
}

func ToProfileDTO(a *profile.Aggregate) ProfileDTO {
	dto := ProfileDTO{
		ID:                a.ID,
		LegacyID:          a.ID,
		Name:              a.Name,
		Email:             a.Email,
		Title:             a.Title,
		Bio:               a.Bio,
		ProfilePicture:    a.ProfilePicture,
		Location:          a.Location,
		Phone:             a.Phone,
		Website:           a.Website,
		Availability:      string(a.Availability),
		Theme:             string(a.Theme),
		TotalEndorsements: a.TotalEndorsements,
		Achievements:      nonNil(a.Achievements),
		Interests:         nonNil(a.Interests),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}

	dto.Skills = make([]SkillDTO, len(a.Skills))
	for i := range a.Skills {
		dto.Skills[i] = ToSkillDTO(&a.Skills[i])
	}

	dto.SocialLinks = make([]SocialLinkDTO, len(a.SocialLinks))
	for i, l := range a.SocialLinks {
		dto.SocialLinks[i] = SocialLinkDTO{ID: l.ID, Platform: l.Platform, URL: l.URL, Icon: l.Icon}
	}

	dto.WorkExperience = make([]WorkExperienceDTO, len(a.WorkExperience))
	for i, w := range a.WorkExperience {
		item := WorkExperienceDTO{
			ID:           w.ID,
			Title:        w.Title,
			Company:      w.Company,
			StartDate:    w.StartDate.Format(dateLayout),
			Current:      w.IsCurrent,
			Location:     w.Location,
			Description:  w.Description,
			Achievements: nonNil(w.Achievements),
		}
		if w.EndDate != nil {
			end := w.EndDate.Format(dateLayout)
			item.EndDate = &end
		}
		dto.WorkExperience[i] = item
	}
	return dto
}

func ToProfileDTOs(items []*profile.Aggregate) []ProfileDTO {
	dtos := make([]ProfileDTO, len(items))
	for i, a := range items {
		dtos[i] = ToProfileDTO(a)
	}
	return dtos
}

func ToStatsDTO(s profile.Stats) StatsDTO {
	return StatsDTO{
		TotalSkills:         s.TotalSkills,
		TotalEndorsements:   s.TotalEndorsements,
		TotalWorkExperience: s.TotalWorkExperience,
		TotalSocialLinks:    s.TotalSocialLinks,
		ProfileCompleteness: s.ProfileCompleteness,
	}
}

func (req *CreateProfileRequest) ToDomain() (profile.Profile, []profile.Skill, []profile.SocialLink, []profile.WorkExperience, error) {
	p := profile.Profile{
		Name:           req.Name,
		Email:          req.Email,
		Title:          req.Title,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		Location:       req.Location,
		Phone:          req.Phone,
		Website:        req.Website,
		Availability:   profile.Availability(req.Availability),
		Theme:          profile.Theme(req.Theme),
	}

	skills := make([]profile.Skill, len(req.Skills))
	for i, s := range req.Skills {
		skills[i] = profile.Skill{
			Name:              s.Name,
			Level:             profile.Proficiency(s.Level),
			YearsOfExperience: s.YearsOfExperience,
		}
	}

	links := make([]profile.SocialLink, len(req.SocialLinks))
	for i, l := range req.SocialLinks {
		links[i] = profile.SocialLink{Platform: l.Platform, URL: l.URL, Icon: l.Icon}
	}

	work := make([]profile.WorkExperience, len(req.WorkExperience))
	for i, w := range req.WorkExperience {
		start, err := parseDate(w.StartDate)
		if err != nil {
			return p, nil, nil, nil, err
		}
		item := profile.WorkExperience{
			Title:        w.Title,
			Company:      w.Company,
			StartDate:    start,
			IsCurrent:    w.Current,
			Location:     w.Location,
			Description:  w.Description,
			Achievements: w.Achievements,
		}
		if w.EndDate != "" {
			end, err := parseDate(w.EndDate)
			if err != nil {
				return p, nil, nil, nil, err
			}
			item.EndDate = &end
		}
		work[i] = item
	}
	return p, skills, links, work, nil
}

func (req *UpdateProfileRequest) ToDomain() profile.Update {
	u := profile.Update{
		Name:           req.Name,
		Email:          req.Email,
		Title:          req.Title,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		Location:       req.Location,
		Phone:          req.Phone,
		Website:        req.Website,
	}
	if req.Availability != nil {
		a := profile.Availability(*req.Availability)
		u.Availability = &a
	}
	if req.Theme != nil {
		t := profile.Theme(*req.Theme)
		u.Theme = &t
	}
	return u
}

// ToDomain converts the snapshot for the bio helper. Unparseable dates are
// left zero; they only influence which role counts as the latest.
func (req *BioProfileRequest) ToDomain() *profile.Aggregate {
	p := profile.Profile{Name: req.Name, Title: req.Title, Location: req.Location}

	skills := make([]profile.Skill, 0, len(req.Skills))
	for _, s := range req.Skills {
		if name := strings.TrimSpace(s.Name); name != "" {
			skills = append(skills, profile.Skill{Name: name})
		}
	}

	work := make([]profile.WorkExperience, len(req.WorkExperience))
	for i, w := range req.WorkExperience {
		item := profile.WorkExperience{Title: w.Title, Company: w.Company, IsCurrent: w.Current}
		item.StartDate, _ = parseDate(w.StartDate)
		if end, err := parseDate(w.EndDate); err == nil && w.EndDate != "" {
			item.EndDate = &end
		}
		work[i] = item
	}
	return profile.NewAggregate(p, skills, nil, work, req.Achievements, req.Interests)
}

// parseDate accepts plain dates as well as full RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
