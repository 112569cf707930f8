package bio

import (
	"fmt"
	"strings"

	"github.com/khoahotran/devprofile/internal/domain/profile"
)

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCreative     Tone = "creative"
	ToneCasual       Tone = "casual"
	ToneTechnical    Tone = "technical"
)

// ParseTone maps free-form input to a known tone, defaulting to professional.
func ParseTone(s string) Tone {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := templates[t]; ok {
		return t
	}
	return ToneProfessional
}

// fallbackFields are the values every template interpolates.
type fallbackFields struct {
	title    string
	skills   string
	topSkill string
	location string
	role     string
}

var templates = map[Tone]func(f fallbackFields) string{
	ToneProfessional: func(f fallbackFields) string {
		return fmt.Sprintf("%sI am a %s specialising in %s. As %s, I bring a strong foundation in building scalable, user-focused solutions. Passionate about clean code and continuous learning, I thrive on turning complex challenges into elegant software.",
			f.location, f.title, f.skills, f.role)
	},
	ToneCreative: func(f fallbackFields) string {
		return fmt.Sprintf("Code is my canvas and %s is my brush. %sI craft digital experiences as %s, weaving together %s to build products people love. Every line of code is an opportunity to solve a real problem beautifully.",
			f.topSkill, f.location, f.title, f.skills)
	},
	ToneCasual: func(f fallbackFields) string {
		return fmt.Sprintf("Hey! I'm a %s who loves building things with %s. %sI spend my days writing code, solving interesting problems, and constantly picking up new skills. Always open to exciting projects and collaborations!",
			f.title, f.skills, f.location)
	},
	ToneTechnical: func(f fallbackFields) string {
		return fmt.Sprintf("%s with hands-on expertise in %s. %sCurrently working as %s, focusing on performance, scalability, and maintainable architecture. Committed to engineering best practices and delivering high-quality software solutions.",
			f.title, f.skills, f.location, f.role)
	},
}

func newFallbackFields(p *profile.Aggregate) fallbackFields {
	f := fallbackFields{
		title:    p.Title,
		skills:   "modern technologies",
		topSkill: "software development",
		role:     p.Title,
	}

	names := skillNames(p.Skills)
	if len(names) > 0 {
		f.skills = strings.Join(names[:min(3, len(names))], ", ")
		f.topSkill = names[0]
	}
	if loc := strings.TrimSpace(p.Location); loc != "" {
		f.location = fmt.Sprintf("Based in %s, ", loc)
	}
	if w := latestRole(p.WorkExperience); w != nil {
		f.role = fmt.Sprintf("%s at %s", w.Title, w.Company)
	}
	return f
}

// Fallback renders the deterministic template for tone.
func Fallback(p *profile.Aggregate, tone Tone) string {
	render, ok := templates[tone]
	if !ok {
		render = templates[ToneProfessional]
	}
	return render(newFallbackFields(p))
}

func skillNames(skills []profile.Skill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		if n := strings.TrimSpace(s.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// latestRole picks the most recent role without reordering the caller's slice.
func latestRole(work []profile.WorkExperience) *profile.WorkExperience {
	if len(work) == 0 {
		return nil
	}
	sorted := make([]profile.WorkExperience, len(work))
	copy(sorted, work)
	profile.SortWorkExperience(sorted)
	return &sorted[0]
}
