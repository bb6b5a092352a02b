package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

type Parts struct{ r domain.Requester }

func PartQuery(f domain.PartFilter) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}
	setIfNotEmpty(q, "category", string(f.Category))
	setIfNotEmpty(q, "brand", f.Brand)
	setIfNotEmpty(q, "minPrice", f.MinPrice)
	setIfNotEmpty(q, "maxPrice", f.MaxPrice)
	setIfNotEmpty(q, "q", f.Query)
	setIfNotEmpty(q, "sortBy", f.SortBy)
	setIfNotEmpty(q, "sortDir", f.SortDir)
	return q
}

func (p *Parts) List(ctx context.Context, f domain.PartFilter) (domain.Page[domain.Part], error) {
	return call[domain.Page[domain.Part]](ctx, p.r, get("/api/parts", PartQuery(f)))
}

func (p *Parts) Get(ctx context.Context, partID int64) (domain.Part, error) {
	return call[domain.Part](ctx, p.r, get("/api/parts/"+id(partID), nil))
}

func (p *Parts) Prices(ctx context.Context, partID int64) ([]domain.PricePoint, error) {
	return call[[]domain.PricePoint](ctx, p.r, get("/api/parts/"+id(partID)+"/prices", nil))
}

func (p *Parts) Create(ctx context.Context, in domain.PartInput) (domain.Part, error) {
	req, err := send(http.MethodPost, "/api/parts", in)
	if err != nil {
		return domain.Part{}, err
	}
	return call[domain.Part](ctx, p.r, req)
}

func (p *Parts) Update(ctx context.Context, partID int64, in domain.PartInput) (domain.Part, error) {
	req, err := send(http.MethodPut, "/api/parts/"+id(partID), in)
	if err != nil {
		return domain.Part{}, err
	}
	return call[domain.Part](ctx, p.r, req)
}

func (p *Parts) Delete(ctx context.Context, partID int64) error {
	req, _ := send(http.MethodDelete, "/api/parts/"+id(partID), nil)
	return exec(ctx, p.r, req)
}

// CrawlPrice asks the backend to re-crawl the part's price and returns the
// updated part.
func (p *Parts) CrawlPrice(ctx context.Context, partID int64) (domain.Part, error) {
	req, _ := send(http.MethodPost, "/api/parts/"+id(partID)+"/crawl-price", nil)
	return call[domain.Part](ctx, p.r, req)
}

func (p *Parts) Ratings(ctx context.Context, partID int64) ([]domain.Rating, error) {
	return call[[]domain.Rating](ctx, p.r, get("/api/parts/"+id(partID)+"/ratings", nil))
}

func (p *Parts) Rate(ctx context.Context, partID int64, in domain.RatingInput) (domain.Rating, error) {
	req, err := send(http.MethodPost, "/api/parts/"+id(partID)+"/ratings", in)
	if err != nil {
		return domain.Rating{}, err
	}
	return call[domain.Rating](ctx, p.r, req)
}
