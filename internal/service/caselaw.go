package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/Cab789/capstone/internal/cite"
	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
	"github.com/Cab789/capstone/internal/storage"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrNoPDF       = errors.New("no pdf available for this case")
	ErrPDFGated    = errors.New("pdf requires remaining case allowance")
	ErrBadCitation = errors.New("citation could not be parsed")
)

// Resolution outcomes for a citation URL.
const (
	ResolveRedirect = "redirect"
	ResolveCase     = "case"
	ResolveMultiple = "multiple"
)

// Resolution is the result of resolving a citation path. Exactly one of the
// payload fields is set, according to Kind.
type Resolution struct {
	Kind       string
	RedirectTo string
	Case       *model.Case
	Cases      []model.Case
}

// SeriesResult is a series page: the reporters sharing the slug with their
// volumes, or a redirect when the input was not in canonical form.
type SeriesResult struct {
	RedirectTo string
	Listings   []repository.SeriesListing
}

// VolumeResult is a volume page or a redirect to its canonical URL.
type VolumeResult struct {
	RedirectTo string
	Cases      []model.Case
}

// CaseLawService implements citation resolution, case rendering and the
// series/volume browse pages.
type CaseLawService interface {
	// ResolveCitation resolves /:series/:volume/:page(/:caseID). Non-slug
	// input redirects to the slugified URL; an explicit case ID wins even
	// when its canonical URL differs; several matches without an ID yield a
	// disambiguation listing. No match returns ErrNotFound.
	ResolveCitation(ctx context.Context, series, volume, page string, caseID int64) (*Resolution, error)

	// Series resolves a series page. Input that parses as a full case
	// citation or a statutory citation redirects instead of listing.
	Series(ctx context.Context, series string) (*SeriesResult, error)

	// VolumeCases resolves one volume of a series.
	VolumeCases(ctx context.Context, series, volume string) (*VolumeResult, error)

	// GetCase returns a case by ID, mapping missing rows to ErrNotFound.
	GetCase(ctx context.Context, id int64) (*model.Case, error)

	// CaseBodyHTML returns the rendered body with the case's redaction and
	// elision maps applied.
	CaseBodyHTML(ctx context.Context, c *model.Case) (string, error)

	// FindByCite returns the cases matching a free-form citation query.
	FindByCite(ctx context.Context, q string) ([]model.Case, error)

	// Citations lists the citation strings of a case.
	Citations(ctx context.Context, caseID int64) ([]model.Citation, error)

	// RandomCasePath returns the frontend URL of a randomly chosen case.
	RandomCasePath(ctx context.Context) (string, error)

	// RobotsTxt renders the robots.txt body, with Disallow lines for
	// no_index cases whose exclusion window is still open.
	RobotsTxt(ctx context.Context, now time.Time) (string, error)

	// RecordView appends to the viewer's history when tracking is enabled
	// and bumps the sitewide download counter.
	RecordView(ctx context.Context, viewer *model.User, c *model.Case) error

	// ViewHistory lists the viewer's own case history.
	ViewHistory(ctx context.Context, userID string, limit, offset int) (*HistoryListResult, error)

	// CasePDF streams the scanned PDF of a case.
	CasePDF(ctx context.Context, c *model.Case) (io.ReadCloser, storage.ObjectInfo, error)

	// PageImage streams one scanned page image of a volume.
	PageImage(ctx context.Context, volumeBarcode string, page int) (io.ReadCloser, storage.ObjectInfo, error)
}

type caseLawService struct {
	cases   repository.CaseRepository
	history repository.HistoryRepository
	limits  repository.SiteLimitsRepository
	store   storage.Storage
}

// NewCaseLawService constructs a CaseLawService.
func NewCaseLawService(
	cases repository.CaseRepository,
	history repository.HistoryRepository,
	limits repository.SiteLimitsRepository,
	store storage.Storage,
) CaseLawService {
	return &caseLawService{cases: cases, history: history, limits: limits, store: store}
}

func (s *caseLawService) ResolveCitation(ctx context.Context, series, volume, page string, caseID int64) (*Resolution, error) {
	slug := cite.Slugify(series)
	if slug == "" || !cite.IsSlug(slug) {
		return nil, ErrNotFound
	}
	if slug != series {
		return &Resolution{Kind: ResolveRedirect, RedirectTo: cite.FrontendURL(slug, volume, page, caseID)}, nil
	}

	if caseID > 0 {
		c, err := s.GetCase(ctx, caseID)
		if err != nil {
			return nil, err
		}
		return &Resolution{Kind: ResolveCase, Case: c}, nil
	}

	matches, err := s.cases.FindByFrontendURL(ctx, cite.FrontendURL(slug, volume, page, 0))
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &Resolution{Kind: ResolveCase, Case: &matches[0]}, nil
	default:
		return &Resolution{Kind: ResolveMultiple, Cases: matches}, nil
	}
}

func (s *caseLawService) Series(ctx context.Context, series string) (*SeriesResult, error) {
	trimmed := strings.TrimSpace(series)

	// Statutes like "11 U.S.C. § 550" also match the volume-series-page
	// shape, so they must be routed to citation search first.
	if cite.LooksLikeStatute(trimmed) {
		return &SeriesResult{RedirectTo: "/v1/citations?q=" + url.QueryEscape(trimmed)}, nil
	}
	// "1 Mass. 1" typed into the series slot goes straight to the case.
	if full, ok := cite.ParseCaseCitation(trimmed); ok {
		return &SeriesResult{
			RedirectTo: cite.FrontendURL(cite.Slugify(full.Series), full.Volume, full.Page, 0),
		}, nil
	}

	slug := cite.Slugify(trimmed)
	if slug == "" {
		return nil, ErrNotFound
	}
	if slug != series {
		return &SeriesResult{RedirectTo: "/series/" + slug + "/"}, nil
	}

	listings, err := s.cases.ListSeries(ctx, slug)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, ErrNotFound
	}
	return &SeriesResult{Listings: listings}, nil
}

func (s *caseLawService) VolumeCases(ctx context.Context, series, volume string) (*VolumeResult, error) {
	seriesSlug := cite.Slugify(series)
	volumeSlug := cite.Slugify(volume)
	if seriesSlug == "" || volumeSlug == "" {
		return nil, ErrNotFound
	}
	if seriesSlug != series || volumeSlug != volume {
		return &VolumeResult{RedirectTo: "/series/" + seriesSlug + "/" + volumeSlug + "/"}, nil
	}

	items, err := s.cases.ListVolumeCases(ctx, seriesSlug, volumeSlug)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &VolumeResult{Cases: items}, nil
}

func (s *caseLawService) GetCase(ctx context.Context, id int64) (*model.Case, error) {
	c, err := s.cases.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *caseLawService) CaseBodyHTML(ctx context.Context, c *model.Case) (string, error) {
	body, err := s.cases.GetBody(ctx, c.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return applyHiddenText(body.HTML, c), nil
}

// applyHiddenText replaces redacted and elided passages in the rendered body.
func applyHiddenText(html string, c *model.Case) string {
	for text, replacement := range c.NoIndexRedacted {
		html = strings.ReplaceAll(html, text, replacement)
	}
	for text, replacement := range c.NoIndexElided {
		html = strings.ReplaceAll(html, text, replacement)
	}
	return html
}

func (s *caseLawService) FindByCite(ctx context.Context, q string) ([]model.Case, error) {
	normalized := cite.Normalize(q)
	if normalized == "" {
		return nil, ErrBadCitation
	}
	return s.cases.FindByNormalizedCite(ctx, normalized)
}

func (s *caseLawService) Citations(ctx context.Context, caseID int64) ([]model.Citation, error) {
	return s.cases.Citations(ctx, caseID)
}

func (s *caseLawService) RandomCasePath(ctx context.Context) (string, error) {
	c, err := s.cases.Random(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.FrontendURL, nil
}

func (s *caseLawService) RobotsTxt(ctx context.Context, now time.Time) (string, error) {
	excluded, err := s.cases.ListRobotsExcluded(ctx, now)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if len(excluded) == 0 {
		b.WriteString("Disallow:\n")
		return b.String(), nil
	}
	for _, c := range excluded {
		fmt.Fprintf(&b, "Disallow: %s\n", c.FrontendURL)
	}
	return b.String(), nil
}

func (s *caseLawService) RecordView(ctx context.Context, viewer *model.User, c *model.Case) error {
	if _, err := s.limits.Add(ctx, 0, 1); err != nil {
		return err
	}
	if viewer == nil || !viewer.TrackHistory {
		return nil
	}
	return s.history.Append(ctx, viewer.ID, c.ID)
}

// HistoryListResult is the service-level DTO for paginated case history.
type HistoryListResult struct {
	Items []model.UserHistoryEntry `json:"data"`
	Total int                      `json:"total"`
}

func (s *caseLawService) ViewHistory(ctx context.Context, userID string, limit, offset int) (*HistoryListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.history.ListByUser(ctx, userID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &HistoryListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *caseLawService) CasePDF(ctx context.Context, c *model.Case) (io.ReadCloser, storage.ObjectInfo, error) {
	if !c.PDFAvailable() {
		return nil, storage.ObjectInfo{}, ErrNoPDF
	}
	return s.store.Get(ctx, c.PDFKey)
}

// PageImageKey is the storage layout for scanned page images.
func PageImageKey(volumeBarcode string, page int) string {
	return fmt.Sprintf("page-images/%s/%08d.png", volumeBarcode, page)
}

func (s *caseLawService) PageImage(ctx context.Context, volumeBarcode string, page int) (io.ReadCloser, storage.ObjectInfo, error) {
	if _, err := s.cases.FindVolume(ctx, volumeBarcode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ObjectInfo{}, ErrNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	return s.store.Get(ctx, PageImageKey(volumeBarcode, page))
}
