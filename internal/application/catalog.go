package application

import (
	"context"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPartsPageSize = 12
	comparePoolSize      = 1000
	crawlConcurrency     = 8
)

// SortOptions are the values accepted by ParseSort, newest first by default.
var SortOptions = []string{"createdAt-desc", "createdAt-asc", "price-asc", "price-desc", "name-asc", "name-desc"}

// ParseSort splits "price-asc" into its field and direction.
func ParseSort(option string) (sortBy, sortDir string) {
	field, dir, ok := strings.Cut(strings.TrimSpace(option), "-")
	if !ok || field == "" || (dir != "asc" && dir != "desc") {
		return "createdAt", "desc"
	}
	return field, dir
}

type CatalogService struct {
	parts   domain.PartsAPI
	session *Session
	cache   domain.CacheInvalidator
	log     *zap.Logger
}

func NewCatalogService(parts domain.PartsAPI, session *Session, cache domain.CacheInvalidator, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{parts: parts, session: session, cache: cache, log: log.Named("catalog")}
}

func (s *CatalogService) ListParts(ctx context.Context, f domain.PartFilter) (domain.Page[domain.Part], error) {
	if f.Page < 0 {
		f.Page = 0
	}
	if f.Size <= 0 {
		f.Size = DefaultPartsPageSize
	}
	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}
	if f.SortDir == "" {
		f.SortDir = "desc"
	}
	return s.parts.List(ctx, f)
}

type PartDetail struct {
	Part    domain.Part         `json:"part"`
	Specs   []domain.SpecEntry  `json:"specs"`
	Ratings []domain.Rating     `json:"ratings"`
	Prices  []domain.PricePoint `json:"prices"`
}

// PartDetail loads the part with its ratings and price history in parallel.
// Ratings and prices are optional; only a failure to load the part is fatal.
func (s *CatalogService) PartDetail(ctx context.Context, partID int64) (PartDetail, error) {
	var detail PartDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		part, err := s.parts.Get(gctx, partID)
		if err != nil {
			return err
		}
		detail.Part = part
		return nil
	})
	g.Go(func() error {
		ratings, err := s.parts.Ratings(gctx, partID)
		if err != nil {
			s.log.Warn("load ratings", zap.Int64("part_id", partID), zap.Error(err))
			return nil
		}
		detail.Ratings = ratings
		return nil
	})
	g.Go(func() error {
		prices, err := s.parts.Prices(gctx, partID)
		if err != nil {
			s.log.Warn("load prices", zap.Int64("part_id", partID), zap.Error(err))
			return nil
		}
		detail.Prices = prices
		return nil
	})
	if err := g.Wait(); err != nil {
		return PartDetail{}, err
	}

	if len(detail.Prices) == 0 {
		detail.Prices = detail.Part.PriceHistory
	}
	sortPricePoints(detail.Prices)
	if detail.Ratings == nil {
		detail.Ratings = []domain.Rating{}
	}
	specs, err := detail.Part.Specs()
	if err != nil {
		s.log.Debug("malformed specJson", zap.Int64("part_id", partID), zap.Error(err))
	}
	detail.Specs = domain.Entries(specs)
	return detail, nil
}

func (s *CatalogService) RatePart(ctx context.Context, partID int64, form RatingForm) (domain.Rating, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return domain.Rating{}, err
	}
	if err := Validate(form); err != nil {
		return domain.Rating{}, err
	}
	rating, err := s.parts.Rate(ctx, partID, domain.RatingInput{UserID: user.ID, Score: form.Score, Content: form.Content})
	if err != nil {
		return domain.Rating{}, err
	}
	s.cache.InvalidatePrefix("/api/parts/" + id64(partID))
	return rating, nil
}

func (s *CatalogService) CrawlPrice(ctx context.Context, partID int64) (domain.Part, error) {
	part, err := s.parts.CrawlPrice(ctx, partID)
	if err != nil {
		return domain.Part{}, err
	}
	s.cache.InvalidatePrefix("/api/parts")
	return part, nil
}

type RefreshReport struct {
	Updated []domain.Part    `json:"updated"`
	Failed  map[int64]string `json:"failed,omitempty"`
}

// RefreshAllPrices crawls every given part concurrently. Individual failures
// are collected rather than aborting the rest.
func (s *CatalogService) RefreshAllPrices(ctx context.Context, parts []domain.Part) (RefreshReport, error) {
	if _, err := s.session.RequireAdmin(); err != nil {
		return RefreshReport{}, err
	}

	updated := make([]domain.Part, len(parts))
	failures := make([]error, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(crawlConcurrency)
	for i, p := range parts {
		g.Go(func() error {
			part, err := s.parts.CrawlPrice(gctx, p.ID)
			if err != nil {
				failures[i] = err
				return nil
			}
			updated[i] = part
			return nil
		})
	}
	_ = g.Wait()
	s.cache.InvalidatePrefix("/api/parts")

	report := RefreshReport{Updated: make([]domain.Part, 0, len(parts))}
	for i, p := range parts {
		if failures[i] != nil {
			if report.Failed == nil {
				report.Failed = make(map[int64]string)
			}
			report.Failed[p.ID] = failures[i].Error()
			continue
		}
		report.Updated = append(report.Updated, updated[i])
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// PartList is a caller-held list of parts that admin mutations patch in place
// instead of refetching.
type PartList struct {
	Items []domain.Part
}

func (l *PartList) Prepend(p domain.Part) {
	l.Items = append([]domain.Part{p}, l.Items...)
}

func (l *PartList) Replace(p domain.Part) {
	for i := range l.Items {
		if l.Items[i].ID == p.ID {
			l.Items[i] = p
			return
		}
	}
}

func (l *PartList) Remove(partID int64) {
	out := l.Items[:0]
	for _, p := range l.Items {
		if p.ID != partID {
			out = append(out, p)
		}
	}
	l.Items = out
}

func partInput(form PartForm) domain.PartInput {
	spec := strings.TrimSpace(form.SpecJSON)
	if spec == "" {
		spec = "{}"
	}
	return domain.PartInput{
		Name:     strings.TrimSpace(form.Name),
		Category: form.Category,
		Brand:    strings.TrimSpace(form.Brand),
		Price:    form.Price,
		Wattage:  form.Wattage,
		ImageURL: form.ImageURL,
		SpecJSON: spec,
		CrawlURL: strings.TrimSpace(form.CrawlURL),
	}
}

// CreatePart adds a part and puts it at the top of list. A nil list is
// left alone.
func (s *CatalogService) CreatePart(ctx context.Context, list *PartList, form PartForm) (domain.Part, error) {
	if _, err := s.session.RequireAdmin(); err != nil {
		return domain.Part{}, err
	}
	if err := Validate(form); err != nil {
		return domain.Part{}, err
	}
	part, err := s.parts.Create(ctx, partInput(form))
	if err != nil {
		return domain.Part{}, err
	}
	if list != nil {
		list.Prepend(part)
	}
	s.cache.InvalidatePrefix("/api/parts")
	return part, nil
}

// UpdatePart saves the part and swaps the returned copy into list, if any.
func (s *CatalogService) UpdatePart(ctx context.Context, list *PartList, partID int64, form PartForm) (domain.Part, error) {
	if _, err := s.session.RequireAdmin(); err != nil {
		return domain.Part{}, err
	}
	if err := Validate(form); err != nil {
		return domain.Part{}, err
	}
	part, err := s.parts.Update(ctx, partID, partInput(form))
	if err != nil {
		return domain.Part{}, err
	}
	if list != nil {
		list.Replace(part)
	}
	s.cache.InvalidatePrefix("/api/parts")
	return part, nil
}

// DeletePart removes the part and drops it from list, if any.
func (s *CatalogService) DeletePart(ctx context.Context, list *PartList, partID int64) error {
	if _, err := s.session.RequireAdmin(); err != nil {
		return err
	}
	if err := s.parts.Delete(ctx, partID); err != nil {
		return err
	}
	if list != nil {
		list.Remove(partID)
	}
	s.cache.InvalidatePrefix("/api/parts")
	return nil
}

type Comparison struct {
	Left       domain.Part   `json:"left"`
	Right      *domain.Part  `json:"right,omitempty"`
	Candidates []domain.Part `json:"candidates"`
	Rows       []SpecDiffRow `json:"rows"`
}

// Compare loads the comparison pool, picks left and right from it and diffs
// their specs. rightID zero lists candidates only.
func (s *CatalogService) Compare(ctx context.Context, leftID, rightID int64) (Comparison, error) {
	pool, err := s.parts.List(ctx, domain.PartFilter{Page: 0, Size: comparePoolSize})
	if err != nil {
		return Comparison{}, err
	}
	left, ok := findPart(pool.Content, leftID)
	if !ok {
		if left, err = s.parts.Get(ctx, leftID); err != nil {
			return Comparison{}, err
		}
	}
	out := Comparison{Left: left, Candidates: CompareCandidates(pool.Content, left), Rows: []SpecDiffRow{}}
	if rightID == 0 {
		return out, nil
	}
	right, ok := findPart(pool.Content, rightID)
	if !ok {
		if right, err = s.parts.Get(ctx, rightID); err != nil {
			return Comparison{}, err
		}
	}
	if right.Category != left.Category {
		return out, domain.ValidationError("parts must share a category to be compared")
	}
	leftSpecs, _ := left.Specs()
	rightSpecs, _ := right.Specs()
	out.Right = &right
	out.Rows = DiffSpecs(leftSpecs, rightSpecs)
	return out, nil
}

func findPart(parts []domain.Part, partID int64) (domain.Part, bool) {
	for _, p := range parts {
		if p.ID == partID {
			return p, true
		}
	}
	return domain.Part{}, false
}
