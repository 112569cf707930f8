// Package profiletest provides an in-memory store for exercising code that
// depends on the profile repositories.
package profiletest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
)

// Memory implements profile.Repository and profile.EndorsementRepository.
// Set Failures[method] to make that method return the given error.
type Memory struct {
	mu sync.Mutex

	profiles     map[uuid.UUID]profile.Profile
	order        []uuid.UUID
	skills       map[uuid.UUID]profile.Skill
	skillOrder   []uuid.UUID
	endorsements []profile.Endorsement
	links        map[uuid.UUID][]profile.SocialLink
	work         map[uuid.UUID][]profile.WorkExperience
	achievements map[uuid.UUID][]string
	interests    map[uuid.UUID][]string

	now      time.Time
	Failures map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		profiles:     map[uuid.UUID]profile.Profile{},
		skills:       map[uuid.UUID]profile.Skill{},
		links:        map[uuid.UUID][]profile.SocialLink{},
		work:         map[uuid.UUID][]profile.WorkExperience{},
		achievements: map[uuid.UUID][]string{},
		interests:    map[uuid.UUID][]string{},
		now:          time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Failures:     map[string]error{},
	}
}

func (m *Memory) fail(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Failures[method]
}

// SetFailure is the goroutine-safe way to inject an error.
func (m *Memory) SetFailure(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures[method] = err
}

// tick returns a strictly increasing timestamp. Callers hold m.mu.
func (m *Memory) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func notFound(resource string, id string, cause error) error {
	e := apperror.NewNotFound(resource, id)
	e.Err = cause
	return e
}

func (m *Memory) Create(ctx context.Context, agg *profile.Aggregate) error {
	if err := m.fail("Create"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.profiles {
		if p.Email == agg.Email {
			return apperror.NewConflict("profile", "email", agg.Email)
		}
	}

	m.profiles[agg.ID] = agg.Profile
	m.order = append(m.order, agg.ID)
	for _, s := range agg.Skills {
		s.Endorsements = nil
		m.skills[s.ID] = s
		m.skillOrder = append(m.skillOrder, s.ID)
	}
	m.links[agg.ID] = append([]profile.SocialLink(nil), agg.SocialLinks...)
	m.work[agg.ID] = append([]profile.WorkExperience(nil), agg.WorkExperience...)
	m.achievements[agg.ID] = append([]string(nil), agg.Achievements...)
	m.interests[agg.ID] = append([]string(nil), agg.Interests...)
	return nil
}

func (m *Memory) Update(ctx context.Context, id uuid.UUID, u profile.Update) error {
	if err := m.fail("Update"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return notFound("profile", id.String(), profile.ErrProfileNotFound)
	}
	if u.Email != nil {
		for otherID, other := range m.profiles {
			if otherID != id && other.Email == *u.Email {
				return apperror.NewConflict("profile", "email", *u.Email)
			}
		}
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Name, u.Name)
	set(&p.Email, u.Email)
	set(&p.Title, u.Title)
	set(&p.Bio, u.Bio)
	set(&p.ProfilePicture, u.ProfilePicture)
	set(&p.Location, u.Location)
	set(&p.Phone, u.Phone)
	set(&p.Website, u.Website)
	if u.Availability != nil {
		p.Availability = *u.Availability
	}
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	p.UpdatedAt = m.tick()
	m.profiles[id] = p
	return nil
}

// Delete cascades to every owned row.
func (m *Memory) Delete(ctx context.Context, id uuid.UUID) error {
	if err := m.fail("Delete"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[id]; !ok {
		return notFound("profile", id.String(), profile.ErrProfileNotFound)
	}
	delete(m.profiles, id)
	m.order = removeID(m.order, id)

	removed := map[uuid.UUID]bool{}
	for sid, s := range m.skills {
		if s.ProfileID == id {
			removed[sid] = true
			delete(m.skills, sid)
			m.skillOrder = removeID(m.skillOrder, sid)
		}
	}
	kept := m.endorsements[:0]
	for _, e := range m.endorsements {
		if !removed[e.SkillID] {
			kept = append(kept, e)
		}
	}
	m.endorsements = kept

	delete(m.links, id)
	delete(m.work, id)
	delete(m.achievements, id)
	delete(m.interests, id)
	return nil
}

func (m *Memory) UpdateTheme(ctx context.Context, id uuid.UUID, theme profile.Theme) (profile.Theme, error) {
	if err := m.Update(ctx, id, profile.Update{Theme: &theme}); err != nil {
		return "", err
	}
	return theme, nil
}

func (m *Memory) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	if err := m.fail("FindByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, notFound("profile", id.String(), profile.ErrProfileNotFound)
	}
	return &p, nil
}

func (m *Memory) FindIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	if err := m.fail("FindIDByEmail"); err != nil {
		return uuid.Nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, p := range m.profiles {
		if p.Email == strings.TrimSpace(email) {
			return id, nil
		}
	}
	return uuid.Nil, notFound("profile", email, profile.ErrProfileNotFound)
}

// ListIDs returns ids newest first, like the SQL store.
func (m *Memory) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	if err := m.fail("ListIDs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		ids = append(ids, m.order[i])
	}
	return ids, nil
}

func (m *Memory) ListSkills(ctx context.Context, profileID uuid.UUID) ([]profile.Skill, error) {
	if err := m.fail("ListSkills"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []profile.Skill
	for _, sid := range m.skillOrder {
		s := m.skills[sid]
		if s.ProfileID == profileID {
			s.Endorsements = m.endorsementsFor(sid)
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) ListSocialLinks(ctx context.Context, profileID uuid.UUID) ([]profile.SocialLink, error) {
	if err := m.fail("ListSocialLinks"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]profile.SocialLink(nil), m.links[profileID]...), nil
}

func (m *Memory) ListWorkExperience(ctx context.Context, profileID uuid.UUID) ([]profile.WorkExperience, error) {
	if err := m.fail("ListWorkExperience"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]profile.WorkExperience(nil), m.work[profileID]...), nil
}

func (m *Memory) ListAchievements(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	if err := m.fail("ListAchievements"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.achievements[profileID]...), nil
}

func (m *Memory) ListInterests(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	if err := m.fail("ListInterests"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.interests[profileID]...), nil
}

func (m *Memory) FindSkill(ctx context.Context, skillID uuid.UUID) (*profile.Skill, error) {
	if err := m.fail("FindSkill"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.skills[skillID]
	if !ok {
		return nil, notFound("skill", skillID.String(), profile.ErrSkillNotFound)
	}
	s.Endorsements = m.endorsementsFor(skillID)
	return &s, nil
}

func (m *Memory) ListEndorsements(ctx context.Context, skillID uuid.UUID) ([]profile.Endorsement, error) {
	if err := m.fail("ListEndorsements"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endorsementsFor(skillID), nil
}

func (m *Memory) ListEndorsementsByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]profile.Endorsement, error) {
	if err := m.fail("ListEndorsementsByProfile"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []profile.Endorsement
	for _, e := range m.endorsements {
		if s, ok := m.skills[e.SkillID]; ok && s.ProfileID == profileID {
			out = append(out, e)
		}
	}
	profile.SortEndorsements(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Add(ctx context.Context, profileID uuid.UUID, e *profile.Endorsement) error {
	if err := m.fail("Add"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[profileID]
	if !ok {
		return notFound("profile", profileID.String(), profile.ErrProfileNotFound)
	}
	if _, ok := m.skills[e.SkillID]; !ok {
		return notFound("skill", e.SkillID.String(), profile.ErrSkillNotFound)
	}
	e.EndorsedAt = m.tick()
	m.endorsements = append(m.endorsements, *e)
	p.TotalEndorsements = m.countFor(profileID)
	m.profiles[profileID] = p
	return nil
}

func (m *Memory) RecountTotal(ctx context.Context, profileID uuid.UUID) (int, error) {
	if err := m.fail("RecountTotal"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[profileID]
	if !ok {
		return 0, notFound("profile", profileID.String(), profile.ErrProfileNotFound)
	}
	p.TotalEndorsements = m.countFor(profileID)
	m.profiles[profileID] = p
	return p.TotalEndorsements, nil
}

// SetTotal overwrites the stored counter, simulating drift.
func (m *Memory) SetTotal(profileID uuid.UUID, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[profileID]
	p.TotalEndorsements = total
	m.profiles[profileID] = p
}

// EndorsementCount returns the number of stored endorsement rows for a profile.
func (m *Memory) EndorsementCount(profileID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countFor(profileID)
}

func (m *Memory) countFor(profileID uuid.UUID) int {
	n := 0
	for _, e := range m.endorsements {
		if s, ok := m.skills[e.SkillID]; ok && s.ProfileID == profileID {
			n++
		}
	}
	return n
}

func (m *Memory) endorsementsFor(skillID uuid.UUID) []profile.Endorsement {
	out := []profile.Endorsement{}
	for _, e := range m.endorsements {
		if e.SkillID == skillID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndorsedAt.After(out[j].EndorsedAt) })
	return out
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
