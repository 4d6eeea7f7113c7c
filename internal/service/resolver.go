package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expertpanel/draw-service/internal/apperrors"
	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/expertpanel/draw-service/internal/repository"
	"github.com/expertpanel/draw-service/internal/terms"
	"github.com/jmoiron/sqlx"
)

// Resolver builds the eligible candidate pool for a draw.
type Resolver interface {
	Resolve(ctx context.Context, ext sqlx.ExtContext, rule *domain.Rule, draw *domain.Draw) ([]domain.Expert, error)
}

// CandidateResolver intersects the rule's specialty, title and region
// constraints with the active expert directory, then subtracts the draw's
// avoided organizations and persons.
//
// Title policy: when the rule carries title ids, experts with no title set
// remain eligible; when it carries title names only, they do not. The
// directory treats an id reference as an administrative requirement that an
// untitled expert may still satisfy on site, while a name-only requirement
// is an explicit textual demand.
//
// Unit avoidance uses substring containment: an expert is excluded when its
// organization name contains an avoided name token. Containment subsumes
// the equality variant and matches how operators abbreviate unit names.
type CandidateResolver struct {
	log     *slog.Logger
	experts repository.ExpertDirectoryRepository
	refs    repository.ReferenceRepository
}

func NewCandidateResolver(
	log *slog.Logger,
	experts repository.ExpertDirectoryRepository,
	refs repository.ReferenceRepository,
) *CandidateResolver {
	return &CandidateResolver{
		log:     log,
		experts: experts,
		refs:    refs,
	}
}

func (r *CandidateResolver) Resolve(ctx context.Context, ext sqlx.ExtContext, rule *domain.Rule, draw *domain.Draw) ([]domain.Expert, error) {
	const op = "internal.service.resolver.Resolve"

	if rule == nil {
		return nil, fmt.Errorf("%w: draw has no rule", apperrors.ErrValidation)
	}

	query, err := r.buildQuery(ctx, ext, rule)
	if err != nil {
		return nil, err
	}

	candidates, err := r.experts.FindCandidates(ctx, ext, *query)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query expert directory: %w", op, err)
	}

	candidates, err = r.subtractAvoidedUnits(ctx, ext, candidates, draw.AvoidUnits)
	if err != nil {
		return nil, err
	}

	candidates, err = subtractAvoidedPersons(candidates, draw.AvoidPersons)
	if err != nil {
		return nil, err
	}

	needed := draw.ExpertCount + draw.BackupCount
	if len(candidates) < needed {
		return nil, &apperrors.InsufficientCandidatesError{
			Needed:    needed,
			Available: len(candidates),
		}
	}

	r.log.Debug("candidate pool resolved",
		slog.Int64("draw_id", draw.ID),
		slog.Int("eligible", len(candidates)),
		slog.Int("needed", needed),
	)

	return candidates, nil
}

func (r *CandidateResolver) buildQuery(ctx context.Context, ext sqlx.ExtContext, rule *domain.Rule) (*repository.CandidateQuery, error) {
	const op = "internal.service.resolver.buildQuery"

	var query repository.CandidateQuery

	specialtyIDs, specialtyNames, err := terms.SplitIDsAndNames(rule.Specialties)
	if err != nil {
		return nil, err
	}
	if len(specialtyIDs) > 0 {
		// A non-leaf id selects every leaf beneath it.
		query.SpecialtyIDs, err = r.refs.ExpandSpecialtyLeaves(ctx, ext, specialtyIDs)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to expand specialties: %w", op, err)
		}
	} else {
		query.SpecialtyNames = specialtyNames
	}

	titleIDs, titleNames, err := terms.SplitIDsAndNames(rule.Titles)
	if err != nil {
		return nil, err
	}
	if len(titleIDs) > 0 {
		query.TitleIDs, err = r.refs.ExpandTitleLeaves(ctx, ext, titleIDs)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to expand titles: %w", op, err)
		}
		query.IncludeUntitled = true
	}
	query.TitleNames = titleNames

	regionIDs, regionNames, err := terms.SplitIDsAndNames(rule.Regions)
	if err != nil {
		return nil, err
	}
	if len(regionIDs) > 0 {
		query.RegionIDs, err = r.refs.ExpandRegionLeaves(ctx, ext, regionIDs)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to expand regions: %w", op, err)
		}
	}
	query.RegionNames = regionNames

	return &query, nil
}

// subtractAvoidedUnits drops candidates whose organization id is avoided or
// whose organization name contains an avoided name token. Name tokens are
// additionally resolved to ids by exact lookup so renamed organizations
// stay excluded.
func (r *CandidateResolver) subtractAvoidedUnits(ctx context.Context, ext sqlx.ExtContext, candidates []domain.Expert, avoidUnits string) ([]domain.Expert, error) {
	const op = "internal.service.resolver.subtractAvoidedUnits"

	tokens, err := terms.Parse(avoidUnits)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return candidates, nil
	}

	avoidedIDs := make(map[int64]struct{})
	var avoidedNames []string
	for _, token := range tokens {
		switch token.Kind {
		case terms.KindNumericID:
			avoidedIDs[token.ID] = struct{}{}
		case terms.KindFreeText:
			avoidedNames = append(avoidedNames, token.Raw)
		default:
			return nil, &apperrors.InvalidTokenError{Token: token.Raw}
		}
	}

	resolved, err := r.refs.ResolveOrganizationIDs(ctx, ext, avoidedNames)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve organization names: %w", op, err)
	}
	for _, id := range resolved {
		avoidedIDs[id] = struct{}{}
	}

	kept := candidates[:0]
	for _, candidate := range candidates {
		if isAvoidedUnit(candidate, avoidedIDs, avoidedNames) {
			continue
		}
		kept = append(kept, candidate)
	}

	return kept, nil
}

func isAvoidedUnit(candidate domain.Expert, avoidedIDs map[int64]struct{}, avoidedNames []string) bool {
	if candidate.OrganizationID != nil {
		if _, ok := avoidedIDs[*candidate.OrganizationID]; ok {
			return true
		}
	}

	if candidate.OrganizationName == nil {
		return false
	}

	for _, name := range avoidedNames {
		if strings.Contains(*candidate.OrganizationName, name) {
			return true
		}
	}

	return false
}

// subtractAvoidedPersons drops candidates matching any avoid-person token:
// a numeric token matches the identifier exactly (case-insensitive), a
// masked token matches the identifier by prefix and suffix, and a free-text
// token matches by name substring.
func subtractAvoidedPersons(candidates []domain.Expert, avoidPersons string) ([]domain.Expert, error) {
	tokens, err := terms.Parse(avoidPersons)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return candidates, nil
	}

	kept := candidates[:0]
	for _, candidate := range candidates {
		if isAvoidedPerson(candidate, tokens) {
			continue
		}
		kept = append(kept, candidate)
	}

	return kept, nil
}

func isAvoidedPerson(candidate domain.Expert, tokens []terms.Token) bool {
	var idNumber string
	if candidate.IDNumber != nil {
		idNumber = strings.ToLower(*candidate.IDNumber)
	}

	for _, token := range tokens {
		switch token.Kind {
		case terms.KindNumericID:
			if idNumber != "" && idNumber == strings.ToLower(token.Raw) {
				return true
			}
		case terms.KindMasked:
			if idNumber != "" &&
				strings.HasPrefix(idNumber, token.Prefix) &&
				strings.HasSuffix(idNumber, strings.ToLower(token.Suffix)) {
				return true
			}
		case terms.KindFreeText:
			// An identifier ending in a check letter is still an exact
			// identifier match, not a name.
			if isIdentifierLiteral(token.Raw) {
				if idNumber != "" && idNumber == strings.ToLower(token.Raw) {
					return true
				}
				continue
			}
			if strings.Contains(candidate.Name, token.Raw) {
				return true
			}
		}
	}

	return false
}

// isIdentifierLiteral reports whether a free-text token is a full identifier
// with a trailing check letter (digits followed by X/x, at least 8 chars).
func isIdentifierLiteral(s string) bool {
	if len(s) < 8 {
		return false
	}
	last := s[len(s)-1]
	if last != 'X' && last != 'x' {
		return false
	}
	for _, r := range s[:len(s)-1] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
