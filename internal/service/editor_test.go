package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Cab789/capstone/internal/model"
	repoMocks "github.com/Cab789/capstone/internal/repository/mocks"
)

func staffEditor() *model.User {
	return &model.User{ID: "staff-id", IsStaff: true}
}

func TestEditorService_ApplyCorrections(t *testing.T) {
	ctx := context.Background()

	t.Run("requires staff", func(t *testing.T) {
		svc := NewEditorService(new(repoMocks.MockCaseRepository))

		_, err := svc.ApplyCorrections(ctx, &model.User{ID: "u"}, 1, CorrectionInput{})
		assert.ErrorIs(t, err, ErrStaffOnly)

		_, err = svc.ApplyCorrections(ctx, nil, 1, CorrectionInput{})
		assert.ErrorIs(t, err, ErrStaffOnly)
	})

	t.Run("patches lines, body, metadata and logs", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		svc := NewEditorService(repo)

		repo.On("FindByID", ctx, int64(1)).Return(&model.Case{
			ID:                   1,
			Name:                 "Doe v. Roe",
			DecisionDateOriginal: "1900-01-01",
		}, nil)
		repo.On("GetPages", ctx, int64(1)).Return([]model.CasePage{
			{ID: "page-1", CaseID: 1, Blocks: map[string][]string{
				"BL_1": {"first lime", "second line"},
			}},
		}, nil)
		repo.On("UpdatePage", ctx, mock.MatchedBy(func(p *model.CasePage) bool {
			return p.ID == "page-1" && p.Blocks["BL_1"][0] == "first line"
		})).Return(nil)
		repo.On("GetBody", ctx, int64(1)).Return(&model.CaseBody{
			CaseID: 1, HTML: "<p>first lime</p><p>second line</p>",
		}, nil)
		repo.On("UpdateBody", ctx, mock.MatchedBy(func(b *model.CaseBody) bool {
			return b.HTML == "<p>first line</p><p>second line</p>"
		})).Return(nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *model.Case) bool {
			return c.Name == "Doe v. Moe" && c.HumanCorrected
		})).Return(nil)
		repo.On("AddCorrectionLog", ctx, mock.MatchedBy(func(l *model.CorrectionLog) bool {
			return l.CaseID == 1 && l.UserID == "staff-id" && l.Description == "fix ocr"
		})).Return(&model.CorrectionLog{ID: 10}, nil)

		logEntry, err := svc.ApplyCorrections(ctx, staffEditor(), 1, CorrectionInput{
			Description: "fix ocr",
			Metadata: map[string][]any{
				"name":            {"Doe v. Roe", "Doe v. Moe"},
				"human_corrected": {false, true},
				"ignored_field":   {"a", "b"},
			},
			EditList: map[string]map[string]map[string][]any{
				"page-1": {"BL_1": {"0": {"first lime", "first line"}}},
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(10), logEntry.ID)
		repo.AssertExpectations(t)
	})

	t.Run("decision date is re-derived", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		svc := NewEditorService(repo)

		repo.On("FindByID", ctx, int64(1)).Return(&model.Case{
			ID: 1, DecisionDateOriginal: "1900-01-01",
		}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *model.Case) bool {
			return c.DecisionDateOriginal == "1901-06" &&
				c.DecisionDate != nil && c.DecisionDate.Year() == 1901
		})).Return(nil)
		repo.On("AddCorrectionLog", ctx, mock.Anything).Return(&model.CorrectionLog{ID: 1}, nil)

		_, err := svc.ApplyCorrections(ctx, staffEditor(), 1, CorrectionInput{
			Description: "fix date",
			Metadata: map[string][]any{
				"decision_date_original": {"1900-01-01", "1901-06"},
			},
		})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("stale old value is rejected", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		svc := NewEditorService(repo)

		repo.On("FindByID", ctx, int64(1)).Return(&model.Case{ID: 1, Name: "Changed Already"}, nil)

		_, err := svc.ApplyCorrections(ctx, staffEditor(), 1, CorrectionInput{
			Metadata: map[string][]any{"name": {"Doe v. Roe", "Doe v. Moe"}},
		})
		assert.ErrorIs(t, err, ErrStaleEdit)
	})

	t.Run("stale line text is rejected", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		svc := NewEditorService(repo)

		repo.On("FindByID", ctx, int64(1)).Return(&model.Case{ID: 1}, nil)
		repo.On("GetPages", ctx, int64(1)).Return([]model.CasePage{
			{ID: "page-1", CaseID: 1, Blocks: map[string][]string{"BL_1": {"actual text"}}},
		}, nil)

		_, err := svc.ApplyCorrections(ctx, staffEditor(), 1, CorrectionInput{
			EditList: map[string]map[string]map[string][]any{
				"page-1": {"BL_1": {"0": {"expected text", "new text"}}},
			},
		})
		assert.ErrorIs(t, err, ErrStaleEdit)
	})

	t.Run("unknown case maps to not found", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		svc := NewEditorService(repo)

		repo.On("FindByID", ctx, int64(404)).Return(nil, sql.ErrNoRows)

		_, err := svc.ApplyCorrections(ctx, staffEditor(), 404, CorrectionInput{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown page is rejected", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		svc := NewEditorService(repo)

		repo.On("FindByID", ctx, int64(1)).Return(&model.Case{ID: 1}, nil)
		repo.On("GetPages", ctx, int64(1)).Return([]model.CasePage{}, nil)

		_, err := svc.ApplyCorrections(ctx, staffEditor(), 1, CorrectionInput{
			EditList: map[string]map[string]map[string][]any{
				"missing-page": {"BL_1": {"0": {"a", "b"}}},
			},
		})
		assert.ErrorContains(t, err, "unknown page")
	})
}

func TestEditorService_SetRedaction(t *testing.T) {
	ctx := context.Background()

	t.Run("redact stores the replacement word", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		svc := NewEditorService(repo)

		repo.On("FindByID", ctx, int64(1)).Return(&model.Case{ID: 1}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *model.Case) bool {
			return c.NoIndexRedacted["John Doe"] == "redacted"
		})).Return(nil)

		assert.NoError(t, svc.SetRedaction(ctx, staffEditor(), 1, "redact", "John Doe"))
		repo.AssertExpectations(t)
	})

	t.Run("elide stores an ellipsis", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		svc := NewEditorService(repo)

		repo.On("FindByID", ctx, int64(1)).Return(&model.Case{ID: 1}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *model.Case) bool {
			return c.NoIndexElided["long recital"] == "..."
		})).Return(nil)

		assert.NoError(t, svc.SetRedaction(ctx, staffEditor(), 1, "elide", "long recital"))
	})

	t.Run("unknown kind", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		repo.On("FindByID", ctx, int64(1)).Return(&model.Case{ID: 1}, nil)
		svc := NewEditorService(repo)

		assert.ErrorIs(t, svc.SetRedaction(ctx, staffEditor(), 1, "censor", "x"), ErrBadRedactionKind)
	})

	t.Run("requires staff", func(t *testing.T) {
		svc := NewEditorService(new(repoMocks.MockCaseRepository))
		assert.ErrorIs(t, svc.SetRedaction(ctx, nil, 1, "redact", "x"), ErrStaffOnly)
	})

	t.Run("unknown case maps to not found", func(t *testing.T) {
		repo := new(repoMocks.MockCaseRepository)
		svc := NewEditorService(repo)

		repo.On("FindByID", ctx, int64(404)).Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.SetRedaction(ctx, staffEditor(), 404, "redact", "x"), ErrNotFound)
	})
}

func TestEditorService_ClearRedaction(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockCaseRepository)
	svc := NewEditorService(repo)

	repo.On("FindByID", ctx, int64(1)).Return(&model.Case{
		ID:              1,
		NoIndexRedacted: map[string]string{"John Doe": "redacted"},
	}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(c *model.Case) bool {
		_, present := c.NoIndexRedacted["John Doe"]
		return !present
	})).Return(nil)

	assert.NoError(t, svc.ClearRedaction(ctx, staffEditor(), 1, "redact", "John Doe"))
	repo.AssertExpectations(t)
}
