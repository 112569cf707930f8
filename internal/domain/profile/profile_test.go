package profile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSortWorkExperience_OngoingFirstThenNewest(t *testing.T) {
	end2020 := day(2021, 6, 1)
	end2022 := day(2023, 6, 1)
	items := []WorkExperience{
		{Title: "2020", StartDate: day(2020, 1, 1), EndDate: &end2020},
		{Title: "current", StartDate: day(2019, 1, 1), IsCurrent: true},
		{Title: "2022", StartDate: day(2022, 1, 1), EndDate: &end2022},
	}

	SortWorkExperience(items)

	titles := []string{items[0].Title, items[1].Title, items[2].Title}
	assert.Equal(t, []string{"current", "2022", "2020"}, titles)
}

func TestSortWorkExperience_UndatedCountsAsOngoing(t *testing.T) {
	end := day(2024, 1, 1)
	items := []WorkExperience{
		{Title: "ended", StartDate: day(2023, 1, 1), EndDate: &end},
		{Title: "undated", StartDate: day(2015, 1, 1)},
	}

	SortWorkExperience(items)

	assert.Equal(t, "undated", items[0].Title)
}

func TestSortEndorsements_NewestFirst(t *testing.T) {
	items := []Endorsement{
		{EndorserName: "old", EndorsedAt: day(2024, 1, 1)},
		{EndorserName: "new", EndorsedAt: day(2024, 3, 1)},
		{EndorserName: "mid", EndorsedAt: day(2024, 2, 1)},
	}

	SortEndorsements(items)

	assert.Equal(t, "new", items[0].EndorserName)
	assert.Equal(t, "mid", items[1].EndorserName)
	assert.Equal(t, "old", items[2].EndorserName)
}

func TestDefaultAvatar(t *testing.T) {
	a := DefaultAvatar("grace@example.com")
	b := DefaultAvatar(" grace@example.com ")

	assert.Equal(t, "https://i.pravatar.cc/150?u=grace%40example.com", a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DefaultAvatar("linus@example.com"))
}

func TestNewAggregate_EmptyRelationsAreEmptySlices(t *testing.T) {
	agg := NewAggregate(Profile{ID: uuid.New(), Name: "Empty"}, nil, nil, nil, nil, nil)

	require.NotNil(t, agg.Skills)
	require.NotNil(t, agg.SocialLinks)
	require.NotNil(t, agg.WorkExperience)
	require.NotNil(t, agg.Achievements)
	require.NotNil(t, agg.Interests)
	assert.Empty(t, agg.Skills)
	assert.Empty(t, agg.Interests)
}

func TestNewAggregate_NormalizesCurrentRoles(t *testing.T) {
	end := day(2030, 1, 1)
	agg := NewAggregate(Profile{}, []Skill{{Name: "Go"}}, nil,
		[]WorkExperience{{Title: "now", StartDate: day(2022, 1, 1), EndDate: &end, IsCurrent: true}},
		nil, nil)

	assert.Nil(t, agg.WorkExperience[0].EndDate)
	assert.NotNil(t, agg.WorkExperience[0].Achievements)
	assert.NotNil(t, agg.Skills[0].Endorsements)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Profile
		wantErr error
	}{
		{name: "valid", p: Profile{Name: "A", Email: "a@b.c"}},
		{name: "bad availability", p: Profile{Name: "A", Email: "a@b.c", Availability: "Busy"}, wantErr: ErrInvalidAvailability},
		{name: "bad theme", p: Profile{Name: "A", Email: "a@b.c", Theme: "blue"}, wantErr: ErrInvalidTheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Error(t, (&Profile{Email: "a@b.c"}).Validate())
	assert.Error(t, (&Profile{Name: "A"}).Validate())
}

func TestProfileApplyDefaults(t *testing.T) {
	p := Profile{}
	p.ApplyDefaults()

	assert.Equal(t, ThemeLight, p.Theme)
	assert.Equal(t, AvailabilityOpportunities, p.Availability)
}

func TestWorkExperienceValidate(t *testing.T) {
	before := day(2019, 1, 1)
	w := WorkExperience{Title: "Dev", Company: "Co", StartDate: day(2020, 1, 1), EndDate: &before}
	assert.Error(t, w.Validate())

	w.IsCurrent = true
	assert.NoError(t, w.Validate())

	assert.Error(t, (&WorkExperience{Title: "Dev", Company: "Co"}).Validate())
}

func TestSkillValidate(t *testing.T) {
	neg := -1
	assert.ErrorIs(t, (&Skill{Name: "Go", Level: "Guru"}).Validate(), ErrInvalidProficiency)
	assert.Error(t, (&Skill{Name: "Go", YearsOfExperience: &neg}).Validate())
	assert.Error(t, (&Skill{Name: " "}).Validate())
	assert.NoError(t, (&Skill{Name: "Go", Level: LevelExpert}).Validate())
}

func TestUpdateEmpty(t *testing.T) {
	assert.True(t, Update{}.Empty())
	title := "x"
	assert.False(t, Update{Title: &title}.Empty())
}
