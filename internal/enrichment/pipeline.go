package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/store"
	"marquee/internal/textutil"
)

// ErrNoAttributes is returned when every attribute request failed, which
// usually means the generative service is unreachable.
var ErrNoAttributes = errors.New("no attribute could be generated")

// Generator produces free-form text for a subject following an instruction.
type Generator interface {
	Generate(ctx context.Context, subject, instruction string) (string, error)
}

// PersonHint carries what the catalog already knows about a credited person.
type PersonHint struct {
	ExternalID   string
	Name         string
	Gender       int
	PlaceOfBirth string
	Department   string
	Role         string
	Popularity   float64
	ProfileURL   string
}

// Pipeline synthesizes person attributes one request at a time.
type Pipeline struct {
	generator Generator
	logger    *slog.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(generator Generator, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "enrichment"),
	}
}

// Enrich generates the attributes of the hinted person. A field whose reply
// cannot be parsed falls back to the raw text or an empty value. The
// biography is requested only when existing has none. An error is returned
// only for cancellation, a blank name, or when every request failed.
func (p *Pipeline) Enrich(ctx context.Context, hint PersonHint, existing *store.Person) (store.PersonAttributes, error) {
	attrs := store.PersonAttributes{
		Gender:      store.GenderNotSpecified,
		Professions: []string{},
		SEOKeywords: []string{},
	}
	name := strings.TrimSpace(hint.Name)
	if name == "" {
		return attrs, services.Wrap(services.ErrValidation, "enrichment", "enrich", "person name required", nil)
	}
	if p.generator == nil {
		return attrs, services.Wrap(services.ErrConfiguration, "enrichment", "enrich", "generator not configured", nil)
	}
	logger := logging.WithContext(ctx, p.logger).With(
		logging.String(logging.FieldPersonExternalID, hint.ExternalID),
	)
	subject := name
	if place := strings.TrimSpace(hint.PlaceOfBirth); place != "" {
		subject = fmt.Sprintf("%s (born in %s)", name, place)
	}

	var requested, failed int
	ask := func(attr attribute) (string, bool) {
		requested++
		raw, err := p.generator.Generate(ctx, subject, attr.instruction)
		if err != nil {
			failed++
			logging.WarnWithContext(logger, "attribute generation failed", "enrichment_attribute_failed",
				logging.String(logging.FieldAttribute, attr.field),
				logging.Error(err),
				logging.String(logging.FieldImpact, "attribute left empty"),
				logging.String(logging.FieldErrorHint, "check llm connectivity and quota"),
			)
			return "", false
		}
		return raw, true
	}

	if hint.Gender != GenderCodeNotSpecified {
		attrs.Gender = GenderLabel(hint.Gender)
	} else if raw, ok := ask(genderAttribute); ok {
		attrs.Gender = GenderLabel(RecoverGenderCode(raw))
	}
	if err := ctx.Err(); err != nil {
		return attrs, err
	}

	for _, attr := range personAttributes {
		raw, ok := ask(attr)
		if err := ctx.Err(); err != nil {
			return attrs, err
		}
		if !ok {
			continue
		}
		level := applyAttribute(&attrs, attr, raw)
		logger.Debug("attribute generated",
			logging.String(logging.FieldAttribute, attr.field),
			logging.String("recovery_level", level),
		)
	}

	if existing == nil || strings.TrimSpace(existing.Biography) == "" {
		if raw, ok := ask(biographyAttribute); ok {
			attrs.Biography, _ = RecoverText(raw, biographyAttribute.field)
		}
		if err := ctx.Err(); err != nil {
			return attrs, err
		}
	}

	if requested > 0 && failed == requested {
		return attrs, services.Wrap(services.ErrExternalService, "enrichment", "enrich",
			fmt.Sprintf("%d requests failed", failed), ErrNoAttributes)
	}

	if len(attrs.Professions) == 0 {
		if seed := professionForDepartment(hint.Department); seed != "" {
			attrs.Professions = []string{seed}
		}
	}
	attrs.Professions = NormalizeProfessions(attrs.Professions, attrs.Gender)

	status := p.checkDeath(ctx, name, attrs.DateOfBirth, logger)
	attrs.Deceased = status.Deceased
	attrs.DateOfDeath = status.DateOfDeath
	return attrs, nil
}

// checkDeath runs the dedicated death query. Any failure reads as alive.
func (p *Pipeline) checkDeath(ctx context.Context, name, dateOfBirth string, logger *slog.Logger) DeathStatus {
	subject := name
	if dateOfBirth != "" {
		subject = fmt.Sprintf("%s (born %s)", name, dateOfBirth)
	}
	raw, err := p.generator.Generate(ctx, subject, deathCheckInstruction)
	if err != nil {
		logger.Debug("death check failed; assuming not deceased", logging.Error(err))
		return DeathStatus{}
	}
	return ParseDeathStatus(raw)
}

func applyAttribute(attrs *store.PersonAttributes, attr attribute, raw string) string {
	if attr.kind == kindList {
		values, level := RecoverList(raw, attr.field)
		switch attr.field {
		case "professions":
			if level != LevelFallback {
				for i := range values {
					values[i] = textutil.TitleCase(values[i])
				}
			}
			attrs.Professions = values
		case "seo_keywords":
			attrs.SEOKeywords = values
		}
		return level
	}

	value, level := RecoverText(raw, attr.field)
	if attr.kind == kindLabel && level != LevelFallback {
		value = textutil.TitleCase(value)
	}
	switch attr.field {
	case "country":
		attrs.Country = value
	case "date_of_birth":
		attrs.DateOfBirth = value
	case "ethnicity":
		attrs.Ethnicity = value
	case "eye_color":
		attrs.EyeColor = value
	case "hair_color":
		attrs.HairColor = value
	case "height":
		attrs.Height = value
	case "body_type":
		attrs.BodyType = value
	case "intro":
		attrs.Intro = value
	}
	return level
}

func professionForDepartment(department string) string {
	switch strings.ToLower(strings.TrimSpace(department)) {
	case "acting":
		return "Actor"
	case "directing":
		return "Director"
	case "writing":
		return "Writer"
	case "production":
		return "Producer"
	default:
		return ""
	}
}
