package bio

import (
	"fmt"
	"strings"

	"github.com/khoahotran/devprofile/internal/domain/profile"
)

func buildPrompt(p *profile.Aggregate, tone Tone) string {
	skills := "various skills"
	if names := skillNames(p.Skills); len(names) > 0 {
		skills = strings.Join(names, ", ")
	}

	interests := "technology"
	if len(p.Interests) > 0 {
		interests = strings.Join(p.Interests, ", ")
	}

	experience := "diverse work experience"
	if w := latestRole(p.WorkExperience); w != nil {
		experience = fmt.Sprintf("%s at %s", w.Title, w.Company)
	}

	location := "Not specified"
	if loc := strings.TrimSpace(p.Location); loc != "" {
		location = loc
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s bio for a developer profile with these details:\n", tone)
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Skills: %s\n", skills)
	fmt.Fprintf(&b, "Interests: %s\n", interests)
	if len(p.Achievements) > 0 {
		fmt.Fprintf(&b, "Achievements: %s\n", strings.Join(p.Achievements[:min(3, len(p.Achievements))], ", "))
	}
	fmt.Fprintf(&b, "Experience: %s\n", experience)
	fmt.Fprintf(&b, "Location: %s\n", location)
	b.WriteString("\nRequirements:\n")
	b.WriteString("- Write in first person\n")
	b.WriteString("- Keep it between 60-100 words\n")
	fmt.Fprintf(&b, "- Tone must be %s\n", tone)
	b.WriteString("- Highlight key skills naturally\n")
	b.WriteString("- Make it sound authentic and human\n")
	b.WriteString("- Do NOT use bullet points\n")
	b.WriteString("- Do NOT include any preamble or explanation, just the bio itself")
	return b.String()
}
