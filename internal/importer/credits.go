package importer

import (
	"strconv"
	"strings"

	"marquee/internal/enrichment"
	"marquee/internal/tmdb"
)

// DepartmentActing is the department recorded for cast credits.
const DepartmentActing = "Acting"

// candidate is a credited person selected for resolution.
type candidate struct {
	hint       enrichment.PersonHint
	role       string
	department string
}

func (c candidate) key() string {
	return creditKey(c.hint.ExternalID, c.department)
}

// creditKey is the per-film identity of a credit.
func creditKey(personExternalID, department string) string {
	return strings.TrimSpace(personExternalID) + ":" + strings.TrimSpace(department)
}

// selectCandidates walks the top castLimit cast entries followed by crew
// entries whose job is in crewJobs, in catalog order. A person appearing
// twice within one department is kept once.
func selectCandidates(credits *tmdb.Credits, castLimit int, crewJobs []string, imageURL func(string) string) []candidate {
	if credits == nil {
		return nil
	}
	jobs := make(map[string]struct{}, len(crewJobs))
	for _, job := range crewJobs {
		if job = strings.ToLower(strings.TrimSpace(job)); job != "" {
			jobs[job] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	var out []candidate
	add := func(c candidate) {
		if _, dup := seen[c.key()]; dup {
			return
		}
		seen[c.key()] = struct{}{}
		out = append(out, c)
	}

	cast := credits.Cast
	if castLimit > 0 && len(cast) > castLimit {
		cast = cast[:castLimit]
	}
	for _, member := range cast {
		add(candidate{
			hint: enrichment.PersonHint{
				ExternalID: externalIDString(member.ID),
				Name:       strings.TrimSpace(member.Name),
				Gender:     member.Gender,
				Department: DepartmentActing,
				Role:       strings.TrimSpace(member.Character),
				Popularity: member.Popularity,
				ProfileURL: profileURL(imageURL, member.ProfilePath),
			},
			role:       strings.TrimSpace(member.Character),
			department: DepartmentActing,
		})
	}

	for _, member := range credits.Crew {
		if _, ok := jobs[strings.ToLower(strings.TrimSpace(member.Job))]; !ok {
			continue
		}
		department := strings.TrimSpace(member.Department)
		if department == "" {
			department = strings.TrimSpace(member.Job)
		}
		add(candidate{
			hint: enrichment.PersonHint{
				ExternalID: externalIDString(member.ID),
				Name:       strings.TrimSpace(member.Name),
				Gender:     member.Gender,
				Department: department,
				Role:       strings.TrimSpace(member.Job),
				Popularity: member.Popularity,
				ProfileURL: profileURL(imageURL, member.ProfilePath),
			},
			role:       strings.TrimSpace(member.Job),
			department: department,
		})
	}
	return out
}

func externalIDString(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func profileURL(imageURL func(string) string, path string) string {
	if imageURL == nil || strings.TrimSpace(path) == "" {
		return ""
	}
	return imageURL(path)
}
