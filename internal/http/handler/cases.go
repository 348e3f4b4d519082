package handler

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Cab789/capstone/internal/cite"
	"github.com/Cab789/capstone/internal/http/middleware"
	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/service"
)

// casebody carries the rendered case text, or the reason it was withheld.
type casebody struct {
	Status string `json:"status"`
	Data   string `json:"data,omitempty"`
}

const (
	casebodyOK           = "ok"
	casebodyLimitReached = "error_limit_exceeded"
)

type caseResponse struct {
	*model.Case
	Casebody *casebody `json:"casebody,omitempty"`
}

// spendAllowance charges one case view against the caller's quota. Known
// crawlers read restricted cases for free but the response is marked
// uncacheable. Anonymous browsers must have claimed the allowance cookie
// first; the refreshed cookie is written back either way.
func spendAllowance(c *fiber.Ctx, access service.AccessService, codec *service.AllowanceCodec, kase *model.Case) error {
	if !kase.Restricted {
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
		return nil
	}
	c.Set(fiber.HeaderCacheControl, "no-store")

	if access.IsKnownBot(c.Get(fiber.HeaderUserAgent)) {
		return nil
	}

	if u := middleware.CurrentUser(c); u != nil {
		return access.UpdateAllowance(c.UserContext(), u, 1, c.IP())
	}

	a, ok := middleware.AnonAllowanceFromCtx(c)
	if !ok {
		return service.ErrAllowanceExceeded
	}
	spent, err := codec.Spend(a, 1, time.Now().UTC())
	middleware.SetAnonAllowance(c, codec, spent)
	return err
}

// GetCase serves /v1/cases/:id. A non-numeric id is treated as a citation
// and redirected to the citation search. full_case=true includes the body,
// charged against the allowance; format=pdf streams the scanned volume PDF.
func GetCase(
	cases service.CaseLawService,
	access service.AccessService,
	codec *service.AllowanceCodec,
	metrics *middleware.DomainMetrics,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawID := c.Params("id")
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			target := "/v1/cases?cite=" + url.QueryEscape(cite.Normalize(rawID))
			return c.Redirect(target, fiber.StatusFound)
		}

		kase, err := cases.GetCase(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "case not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		fullCase := c.QueryBool("full_case")
		if c.Query("format") == "pdf" {
			if !fullCase {
				return writeError(c, fiber.StatusBadRequest, "FULL_CASE_REQUIRED", "format=pdf requires full_case=true")
			}
			return serveCasePDF(c, cases, access, codec, metrics, kase)
		}

		res := caseResponse{Case: kase}
		if fullCase {
			if err := spendAllowance(c, access, codec, kase); err != nil {
				if !errors.Is(err, service.ErrAllowanceExceeded) {
					return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				}
				metrics.QuotaDenied()
				res.Casebody = &casebody{Status: casebodyLimitReached}
				return c.JSON(res)
			}

			html, err := cases.CaseBodyHTML(c.UserContext(), kase)
			if err != nil {
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
			if err := cases.RecordView(c.UserContext(), middleware.CurrentUser(c), kase); err != nil {
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
			metrics.CaseViewed()
			res.Casebody = &casebody{Status: casebodyOK, Data: html}
		}
		return c.JSON(res)
	}
}

// serveCasePDF streams the scanned PDF. When the allowance is exhausted the
// client is sent to the HTML page instead, which can explain the limit.
func serveCasePDF(
	c *fiber.Ctx,
	cases service.CaseLawService,
	access service.AccessService,
	codec *service.AllowanceCodec,
	metrics *middleware.DomainMetrics,
	kase *model.Case,
) error {
	if !kase.PDFAvailable() {
		return writeError(c, fiber.StatusNotFound, "NO_PDF", "no pdf available for this case")
	}

	if err := spendAllowance(c, access, codec, kase); err != nil {
		if !errors.Is(err, service.ErrAllowanceExceeded) {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		metrics.QuotaDenied()
		return c.Redirect(kase.FrontendURL, fiber.StatusFound)
	}

	rc, info, err := cases.CasePDF(c.UserContext(), kase)
	if err != nil {
		if errors.Is(err, service.ErrNoPDF) {
			return writeError(c, fiber.StatusNotFound, "NO_PDF", "no pdf available for this case")
		}
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	if err := cases.RecordView(c.UserContext(), middleware.CurrentUser(c), kase); err != nil {
		rc.Close()
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	metrics.CaseViewed()

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+kase.NameAbbreviation+`.pdf"`)
	return c.SendStream(rc, int(info.Size))
}

// ResolveCitation serves /:series/:volume/:page and the four-segment form
// with an explicit case id. Redirects, single matches and disambiguation
// listings come back from the service as a Resolution.
func ResolveCitation(
	cases service.CaseLawService,
	access service.AccessService,
	codec *service.AllowanceCodec,
	metrics *middleware.DomainMetrics,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var caseID int64
		if raw := c.Params("caseID"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "case not found")
			}
			caseID = n
		}

		res, err := cases.ResolveCitation(c.UserContext(), c.Params("series"), c.Params("volume"), c.Params("page"), caseID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND",
					"no cases found for this citation, try searching other databases")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		switch res.Kind {
		case service.ResolveRedirect:
			return c.Redirect(res.RedirectTo, fiber.StatusFound)
		case service.ResolveMultiple:
			return c.Status(fiber.StatusMultipleChoices).JSON(fiber.Map{
				"message": "multiple cases match this citation",
				"data":    res.Cases,
			})
		}

		kase := res.Case
		out := caseResponse{Case: kase}
		if err := spendAllowance(c, access, codec, kase); err != nil {
			if !errors.Is(err, service.ErrAllowanceExceeded) {
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
			metrics.QuotaDenied()
			out.Casebody = &casebody{Status: casebodyLimitReached}
			return c.JSON(out)
		}

		html, err := cases.CaseBodyHTML(c.UserContext(), kase)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if err := cases.RecordView(c.UserContext(), middleware.CurrentUser(c), kase); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		metrics.CaseViewed()
		out.Casebody = &casebody{Status: casebodyOK, Data: html}
		return c.JSON(out)
	}
}

// SearchCitations serves both /v1/citations?q= and /v1/cases?cite= lookups.
func SearchCitations(cases service.CaseLawService, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := c.Query(param)
		if q == "" {
			return writeError(c, fiber.StatusBadRequest, "QUERY_REQUIRED", "query parameter "+param+" is required")
		}

		matches, err := cases.FindByCite(c.UserContext(), q)
		if err != nil {
			if errors.Is(err, service.ErrBadCitation) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_CITATION", "citation could not be parsed")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": matches, "total": len(matches)})
	}
}

// CaseCitations lists the citation strings pointing at one case.
func CaseCitations(cases service.CaseLawService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		cites, err := cases.Citations(c.UserContext(), id)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": cites, "total": len(cites)})
	}
}

// SeriesPage lists a reporter series, or redirects when the input parses as
// a full case citation, a statutory citation, or an unslugified name.
func SeriesPage(cases service.CaseLawService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := cases.Series(c.UserContext(), c.Params("series"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "series not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if res.RedirectTo != "" {
			return c.Redirect(res.RedirectTo, fiber.StatusFound)
		}
		return c.JSON(fiber.Map{"data": res.Listings})
	}
}

// VolumePage lists the cases of one volume of a series.
func VolumePage(cases service.CaseLawService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := cases.VolumeCases(c.UserContext(), c.Params("series"), c.Params("volume"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "volume not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if res.RedirectTo != "" {
			return c.Redirect(res.RedirectTo, fiber.StatusFound)
		}
		return c.JSON(fiber.Map{"data": res.Cases})
	}
}

// RandomCase redirects to a randomly chosen case page.
func RandomCase(cases service.CaseLawService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, err := cases.RandomCasePath(c.UserContext())
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no cases available")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Redirect(path, fiber.StatusFound)
	}
}

// RobotsTxt renders robots.txt with Disallow lines for excluded cases.
func RobotsTxt(cases service.CaseLawService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := cases.RobotsTxt(c.UserContext(), time.Now().UTC())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Type("txt").SendString(body)
	}
}

// PageImage streams one scanned page of a volume. Staff only; the route
// carries middleware.RequireStaff.
func PageImage(cases service.CaseLawService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Params("page"))
		if err != nil || page < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page number")
		}

		rc, info, err := cases.PageImage(c.UserContext(), c.Params("barcode"), page)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "page image not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		ct := info.ContentType
		if ct == "" {
			ct = "image/png"
		}
		c.Set(fiber.HeaderContentType, ct)
		return c.SendStream(rc, int(info.Size))
	}
}
