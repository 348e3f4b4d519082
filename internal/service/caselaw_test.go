package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
	repoMocks "github.com/Cab789/capstone/internal/repository/mocks"
	storeMocks "github.com/Cab789/capstone/internal/storage/mocks"
)

type caseLawMocks struct {
	cases   *repoMocks.MockCaseRepository
	history *repoMocks.MockHistoryRepository
	limits  *repoMocks.MockSiteLimitsRepository
	store   *storeMocks.MockStorage
}

func newCaseLawService() (CaseLawService, *caseLawMocks) {
	m := &caseLawMocks{
		cases:   new(repoMocks.MockCaseRepository),
		history: new(repoMocks.MockHistoryRepository),
		limits:  new(repoMocks.MockSiteLimitsRepository),
		store:   new(storeMocks.MockStorage),
	}
	return NewCaseLawService(m.cases, m.history, m.limits, m.store), m
}

func TestCaseLawService_ResolveCitation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		series     string
		volume     string
		page       string
		caseID     int64
		setupMocks func(m *caseLawMocks)
		wantKind   string
		wantTo     string
		wantErr    error
	}{
		{
			name:   "unslugified series redirects",
			series: "Ill. App.", volume: "23", page: "19",
			setupMocks: func(m *caseLawMocks) {},
			wantKind:   ResolveRedirect,
			wantTo:     "/ill-app/23/19/",
		},
		{
			name:   "redirect keeps the case id",
			series: "Ill. App.", volume: "23", page: "19", caseID: 42,
			setupMocks: func(m *caseLawMocks) {},
			wantKind:   ResolveRedirect,
			wantTo:     "/ill-app/23/19/42/",
		},
		{
			name:   "invalid characters are not found",
			series: "$$$", volume: "23", page: "19",
			setupMocks: func(m *caseLawMocks) {},
			wantErr:    ErrNotFound,
		},
		{
			name:   "single match",
			series: "ill-app", volume: "23", page: "19",
			setupMocks: func(m *caseLawMocks) {
				m.cases.On("FindByFrontendURL", ctx, "/ill-app/23/19/").
					Return([]model.Case{{ID: 1, FrontendURL: "/ill-app/23/19/"}}, nil)
			},
			wantKind: ResolveCase,
		},
		{
			name:   "no match",
			series: "ill-app", volume: "23", page: "19",
			setupMocks: func(m *caseLawMocks) {
				m.cases.On("FindByFrontendURL", ctx, "/ill-app/23/19/").
					Return([]model.Case{}, nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name:   "several matches need disambiguation",
			series: "ill-app", volume: "23", page: "19",
			setupMocks: func(m *caseLawMocks) {
				m.cases.On("FindByFrontendURL", ctx, "/ill-app/23/19/").
					Return([]model.Case{{ID: 1}, {ID: 2}}, nil)
			},
			wantKind: ResolveMultiple,
		},
		{
			name:   "explicit case id wins",
			series: "ill-app", volume: "23", page: "19", caseID: 42,
			setupMocks: func(m *caseLawMocks) {
				m.cases.On("FindByID", ctx, int64(42)).
					Return(&model.Case{ID: 42, FrontendURL: "/mass/1/1/"}, nil)
			},
			wantKind: ResolveCase,
		},
		{
			name:   "unknown case id",
			series: "ill-app", volume: "23", page: "19", caseID: 999,
			setupMocks: func(m *caseLawMocks) {
				m.cases.On("FindByID", ctx, int64(999)).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newCaseLawService()
			tt.setupMocks(m)

			res, err := svc.ResolveCitation(ctx, tt.series, tt.volume, tt.page, tt.caseID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantKind, res.Kind)
			if tt.wantTo != "" {
				assert.Equal(t, tt.wantTo, res.RedirectTo)
			}
			m.cases.AssertExpectations(t)
		})
	}
}

func TestCaseLawService_Series(t *testing.T) {
	ctx := context.Background()

	t.Run("full citation input redirects to the case", func(t *testing.T) {
		svc, _ := newCaseLawService()
		res, err := svc.Series(ctx, "1 Mass. 1")
		assert.NoError(t, err)
		assert.Equal(t, "/mass/1/1/", res.RedirectTo)
	})

	t.Run("statutory citation routes to search", func(t *testing.T) {
		svc, _ := newCaseLawService()
		res, err := svc.Series(ctx, "11 U.S.C. § 550")
		assert.NoError(t, err)
		assert.Equal(t, "/v1/citations?q=11+U.S.C.+%C2%A7+550", res.RedirectTo)
	})

	t.Run("unslugified series redirects", func(t *testing.T) {
		svc, _ := newCaseLawService()
		res, err := svc.Series(ctx, "Ill. App.")
		assert.NoError(t, err)
		assert.Equal(t, "/series/ill-app/", res.RedirectTo)
	})

	t.Run("slug lists reporters with volumes", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.cases.On("ListSeries", ctx, "ill-app").Return([]repository.SeriesListing{
			{Reporter: model.Reporter{ID: 1, ShortNameSlug: "ill-app"}},
		}, nil)

		res, err := svc.Series(ctx, "ill-app")
		assert.NoError(t, err)
		assert.Empty(t, res.RedirectTo)
		assert.Len(t, res.Listings, 1)
	})

	t.Run("unknown series", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.cases.On("ListSeries", ctx, "nope").Return([]repository.SeriesListing{}, nil)

		_, err := svc.Series(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCaseLawService_VolumeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("unslugified parts redirect", func(t *testing.T) {
		svc, _ := newCaseLawService()
		res, err := svc.VolumeCases(ctx, "Ill. App.", "23")
		assert.NoError(t, err)
		assert.Equal(t, "/series/ill-app/23/", res.RedirectTo)
	})

	t.Run("listing", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.cases.On("ListVolumeCases", ctx, "ill-app", "23").
			Return([]model.Case{{ID: 1}}, nil)

		res, err := svc.VolumeCases(ctx, "ill-app", "23")
		assert.NoError(t, err)
		assert.Len(t, res.Cases, 1)
	})

	t.Run("empty volume", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.cases.On("ListVolumeCases", ctx, "ill-app", "99").
			Return([]model.Case{}, nil)

		_, err := svc.VolumeCases(ctx, "ill-app", "99")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCaseLawService_CaseBodyHTML(t *testing.T) {
	ctx := context.Background()

	t.Run("applies redactions and elisions", func(t *testing.T) {
		svc, m := newCaseLawService()
		c := &model.Case{
			ID:              1,
			NoIndexRedacted: map[string]string{"John Doe": "redacted"},
			NoIndexElided:   map[string]string{"some long recital": "..."},
		}
		m.cases.On("GetBody", ctx, int64(1)).Return(&model.CaseBody{
			CaseID: 1,
			HTML:   "<p>John Doe argued some long recital before the court.</p>",
		}, nil)

		html, err := svc.CaseBodyHTML(ctx, c)
		assert.NoError(t, err)
		assert.Equal(t, "<p>redacted argued ... before the court.</p>", html)
	})

	t.Run("missing body", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.cases.On("GetBody", ctx, int64(2)).Return(nil, sql.ErrNoRows)

		_, err := svc.CaseBodyHTML(ctx, &model.Case{ID: 2})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCaseLawService_FindByCite(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes before lookup", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.cases.On("FindByNormalizedCite", ctx, "23illapp19").
			Return([]model.Case{{ID: 1}}, nil)

		cases, err := svc.FindByCite(ctx, "23 Ill. App. 19")
		assert.NoError(t, err)
		assert.Len(t, cases, 1)
		m.cases.AssertExpectations(t)
	})

	t.Run("unparseable query", func(t *testing.T) {
		svc, _ := newCaseLawService()
		_, err := svc.FindByCite(ctx, "***")
		assert.ErrorIs(t, err, ErrBadCitation)
	})
}

func TestCaseLawService_RobotsTxt(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("lists excluded cases", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.cases.On("ListRobotsExcluded", ctx, now).Return([]model.Case{
			{FrontendURL: "/ill-app/23/19/"},
			{FrontendURL: "/mass/1/1/"},
		}, nil)

		body, err := svc.RobotsTxt(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, "User-agent: *\nDisallow: /ill-app/23/19/\nDisallow: /mass/1/1/\n", body)
	})

	t.Run("nothing excluded", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.cases.On("ListRobotsExcluded", ctx, now).Return([]model.Case{}, nil)

		body, err := svc.RobotsTxt(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, "User-agent: *\nDisallow:\n", body)
	})
}

func TestCaseLawService_RecordView(t *testing.T) {
	ctx := context.Background()
	c := &model.Case{ID: 7}

	t.Run("bumps the download counter", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.limits.On("Add", ctx, 0, 1).Return(&model.SiteLimits{DailyDownloads: 8}, nil)

		assert.NoError(t, svc.RecordView(ctx, nil, c))
		m.limits.AssertExpectations(t)
		m.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("appends history for tracked users", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.limits.On("Add", ctx, 0, 1).Return(&model.SiteLimits{}, nil)
		m.history.On("Append", ctx, "user-id", int64(7)).Return(nil)

		viewer := &model.User{ID: "user-id", TrackHistory: true}
		assert.NoError(t, svc.RecordView(ctx, viewer, c))
		m.history.AssertExpectations(t)
	})

	t.Run("skips history for untracked users", func(t *testing.T) {
		svc, m := newCaseLawService()
		m.limits.On("Add", ctx, 0, 1).Return(&model.SiteLimits{}, nil)

		viewer := &model.User{ID: "user-id"}
		assert.NoError(t, svc.RecordView(ctx, viewer, c))
		m.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCaseLawService_CasePDF(t *testing.T) {
	ctx := context.Background()

	t.Run("no pdf stored", func(t *testing.T) {
		svc, _ := newCaseLawService()
		_, _, err := svc.CasePDF(ctx, &model.Case{ID: 1})
		assert.ErrorIs(t, err, ErrNoPDF)
	})
}

func TestPageImageKey(t *testing.T) {
	assert.Equal(t, "page-images/32044057891608/00000019.png", PageImageKey("32044057891608", 19))
}
