package profile

import (
	"math"
	"strings"
)

// completenessChecks is the number of equally weighted conditions: eight
// scalar fields plus four relation-presence checks.
const completenessChecks = 12

// Completeness scores how filled-in an aggregate is, from 0 to 100.
func Completeness(a *Aggregate) int {
	if a == nil {
		return 0
	}
	scalars := []string{
		a.Name, a.Email, a.Title, a.Bio,
		a.ProfilePicture, a.Location, a.Phone, a.Website,
	}

	met := 0
	for _, v := range scalars {
		if strings.TrimSpace(v) != "" {
			met++
		}
	}
	for _, present := range []bool{
		len(a.Skills) > 0,
		len(a.SocialLinks) > 0,
		len(a.WorkExperience) > 0,
		len(a.Achievements) > 0,
	} {
		if present {
			met++
		}
	}

	share := 100.0 / completenessChecks
	return int(math.Round(float64(met) * share))
}

type Stats struct {
	TotalSkills         int `json:"total_skills"`
	TotalEndorsements   int `json:"total_endorsements"`
	TotalWorkExperience int `json:"total_work_experience"`
	TotalSocialLinks    int `json:"total_social_links"`
	ProfileCompleteness int `json:"profile_completeness"`
}

func ComputeStats(a *Aggregate) Stats {
	return Stats{
		TotalSkills:         len(a.Skills),
		TotalEndorsements:   a.TotalEndorsements,
		TotalWorkExperience: len(a.WorkExperience),
		TotalSocialLinks:    len(a.SocialLinks),
		ProfileCompleteness: Completeness(a),
	}
}
