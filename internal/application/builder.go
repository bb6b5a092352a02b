package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const candidatesPageSize = 50

type BuilderService struct {
	parts   domain.PartsAPI
	builds  domain.BuildsAPI
	drafts  domain.DraftRepository
	session *Session
	cache   domain.CacheInvalidator
	log     *zap.Logger
}

func NewBuilderService(parts domain.PartsAPI, builds domain.BuildsAPI, drafts domain.DraftRepository, session *Session, cache domain.CacheInvalidator, log *zap.Logger) *BuilderService {
	return &BuilderService{parts: parts, builds: builds, drafts: drafts, session: session, cache: cache, log: log.Named("builder")}
}

type DraftSlot struct {
	Category domain.Category `json:"category"`
	Part     *domain.Part    `json:"part,omitempty"`
}

// Draft is the builder's state: one slot per category, local totals, and the
// backend verdict once two or more parts are chosen.
type Draft struct {
	Title         string                      `json:"title"`
	Slots         []DraftSlot                 `json:"slots"`
	TotalPrice    float64                     `json:"total_price"`
	TotalWattage  int                         `json:"total_wattage"`
	Compatibility *domain.CompatibilityResult `json:"compatibility,omitempty"`
}

func (d Draft) PartIDs() []int64 {
	ids := make([]int64, 0, len(d.Slots))
	for _, slot := range d.Slots {
		if slot.Part != nil {
			ids = append(ids, slot.Part.ID)
		}
	}
	return ids
}

func (d Draft) Parts() []domain.Part {
	out := make([]domain.Part, 0, len(d.Slots))
	for _, slot := range d.Slots {
		if slot.Part != nil {
			out = append(out, *slot.Part)
		}
	}
	return out
}

// SelectPart puts the part into its category slot, replacing the previous one.
func (s *BuilderService) SelectPart(ctx context.Context, partID int64) (domain.Part, error) {
	part, err := s.parts.Get(ctx, partID)
	if err != nil {
		return domain.Part{}, err
	}
	if err := s.drafts.PutDraftPart(ctx, part.Category, part.ID); err != nil {
		return domain.Part{}, err
	}
	return part, nil
}

func (s *BuilderService) RemoveCategory(ctx context.Context, category domain.Category) error {
	return s.drafts.RemoveDraftPart(ctx, category)
}

func (s *BuilderService) SetTitle(ctx context.Context, title string) error {
	return s.drafts.SetDraftTitle(ctx, strings.TrimSpace(title))
}

func (s *BuilderService) Reset(ctx context.Context) error {
	return s.drafts.ClearDraft(ctx)
}

// Draft loads the selected parts in parallel and checks compatibility when at
// least two are selected.
func (s *BuilderService) Draft(ctx context.Context) (Draft, error) {
	title, err := s.drafts.DraftTitle(ctx)
	if err != nil {
		return Draft{}, err
	}
	selected, err := s.drafts.DraftParts(ctx)
	if err != nil {
		return Draft{}, err
	}

	byCategory := make(map[domain.Category]int64, len(selected))
	for _, dp := range selected {
		byCategory[dp.Category] = dp.PartID
	}

	loaded := make([]*domain.Part, len(domain.Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range domain.Categories {
		partID, ok := byCategory[category]
		if !ok {
			continue
		}
		g.Go(func() error {
			part, err := s.parts.Get(gctx, partID)
			if err != nil {
				return fmt.Errorf("load %s part %d: %w", category, partID, err)
			}
			loaded[i] = &part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Draft{}, err
	}

	draft := Draft{Title: title, Slots: make([]DraftSlot, 0, len(domain.Categories))}
	for i, category := range domain.Categories {
		draft.Slots = append(draft.Slots, DraftSlot{Category: category, Part: loaded[i]})
		if loaded[i] != nil {
			draft.TotalPrice += loaded[i].Price
			draft.TotalWattage += loaded[i].Wattage
		}
	}

	if ids := draft.PartIDs(); len(ids) >= 2 {
		result, err := s.builds.Check(ctx, ids)
		if err != nil {
			s.log.Warn("compatibility check", zap.Error(err))
		} else {
			draft.Compatibility = &result
		}
	}
	return draft, nil
}

// Candidates lists the parts offered for a category slot.
func (s *BuilderService) Candidates(ctx context.Context, category domain.Category) ([]domain.Part, error) {
	page, err := s.parts.List(ctx, domain.PartFilter{Category: category, Size: candidatesPageSize, SortBy: "name", SortDir: "asc"})
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

// Save stores the draft as a build owned by the signed-in user. A draft the
// backend flagged as incompatible is refused.
func (s *BuilderService) Save(ctx context.Context, title string) (domain.Build, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return domain.Build{}, err
	}
	if title == "" {
		if title, err = s.drafts.DraftTitle(ctx); err != nil {
			return domain.Build{}, err
		}
	}
	form := BuildForm{Title: strings.TrimSpace(title)}
	if err := Validate(form); err != nil {
		return domain.Build{}, err
	}

	draft, err := s.Draft(ctx)
	if err != nil {
		return domain.Build{}, err
	}
	ids := draft.PartIDs()
	if len(ids) == 0 {
		return domain.Build{}, domain.ValidationError("select at least one part")
	}
	if draft.Compatibility != nil && !draft.Compatibility.Compatible {
		return domain.Build{}, domain.ValidationError("the build has compatibility warnings and cannot be saved")
	}

	build, err := s.builds.Save(ctx, domain.BuildInput{UserID: user.ID, Title: form.Title, PartIDs: ids})
	if err != nil {
		return domain.Build{}, err
	}
	s.cache.InvalidatePrefix("/api/builds")
	if err := s.drafts.ClearDraft(ctx); err != nil {
		s.log.Warn("clear draft after save", zap.Error(err))
	}
	return build, nil
}

// LoadBuild replaces the draft with a saved build's parts.
func (s *BuilderService) LoadBuild(ctx context.Context, buildID int64) (Draft, error) {
	build, err := s.builds.Get(ctx, buildID)
	if err != nil {
		return Draft{}, err
	}
	parts, err := s.buildParts(ctx, build)
	if err != nil {
		return Draft{}, err
	}

	if err := s.drafts.ClearDraft(ctx); err != nil {
		return Draft{}, err
	}
	for _, p := range parts {
		if err := s.drafts.PutDraftPart(ctx, p.Category, p.ID); err != nil {
			return Draft{}, err
		}
	}
	if err := s.drafts.SetDraftTitle(ctx, build.Title); err != nil {
		return Draft{}, err
	}
	return s.Draft(ctx)
}

func (s *BuilderService) buildParts(ctx context.Context, build domain.Build) ([]domain.Part, error) {
	if len(build.Parts) > 0 {
		return build.Parts, nil
	}
	parts := make([]domain.Part, len(build.PartIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, partID := range build.PartIDs {
		g.Go(func() error {
			part, err := s.parts.Get(gctx, partID)
			if err != nil {
				return err
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// ShareSource is what a build share post is generated from.
type ShareSource struct {
	Title        string
	TotalPrice   float64
	TotalWattage int
	Compatible   bool
	Warnings     []string
	Parts        []domain.Part
}

// ShareFromDraft captures the current draft for sharing.
func ShareFromDraft(d Draft) ShareSource {
	src := ShareSource{Title: d.Title, TotalPrice: d.TotalPrice, TotalWattage: d.TotalWattage, Compatible: true, Parts: d.Parts()}
	if d.Compatibility != nil {
		src.Compatible = d.Compatibility.Compatible
		src.Warnings = d.Compatibility.Warnings
	}
	return src
}

// ShareFromBuild treats a saved build as compatible.
func ShareFromBuild(b domain.Build) ShareSource {
	return ShareSource{Title: b.Title, TotalPrice: b.TotalPrice, TotalWattage: b.WattageTotal, Compatible: true, Parts: b.Parts}
}

// ShareContent renders the markdown body of a build share post.
func ShareContent(src ShareSource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", src.Title)
	fmt.Fprintf(&b, "**Total price:** %s\n", FormatPrice(src.TotalPrice))
	fmt.Fprintf(&b, "**Power draw:** %dW\n", src.TotalWattage)
	if src.Compatible {
		b.WriteString("**Compatibility:** ✓ Compatible\n\n")
	} else {
		b.WriteString("**Compatibility:** ⚠ Has warnings\n\n")
	}
	if len(src.Warnings) > 0 {
		b.WriteString("**Warnings:**\n")
		for _, w := range src.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
	b.WriteString("## Parts\n\n")
	for _, p := range src.Parts {
		fmt.Fprintf(&b, "### %s\n", p.Category)
		fmt.Fprintf(&b, "**%s**\n", p.Name)
		if p.Brand != "" {
			fmt.Fprintf(&b, "- Brand: %s\n", p.Brand)
		}
		fmt.Fprintf(&b, "- Price: %s\n", FormatPrice(p.Price))
		if p.Wattage != 0 {
			fmt.Fprintf(&b, "- Power: %dW\n", p.Wattage)
		}
		b.WriteString("\n")
	}
	return b.String()
}
