package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

var (
	ErrStaffOnly        = errors.New("staff access required")
	ErrStaleEdit        = errors.New("edit does not match the current text")
	ErrBadRedactionKind = errors.New("unknown redaction kind")
)

// Redaction kinds and their replacement text.
const (
	RedactionKindRedact = "redact"
	RedactionKindElide  = "elide"

	redactedText = "redacted"
	elidedText   = "..."
)

// Metadata fields the editor may change.
const (
	fieldName                 = "name"
	fieldDecisionDateOriginal = "decision_date_original"
	fieldHumanCorrected       = "human_corrected"
)

// CorrectionInput is one editor session. Metadata maps a field name to an
// [old, new] pair; EditList maps page ID, block ID and line number to the
// [old, new] pair for that line.
type CorrectionInput struct {
	Description string                                 `json:"description"`
	Metadata    map[string][]any                       `json:"metadata"`
	EditList    map[string]map[string]map[string][]any `json:"edit_list"`
}

// EditorService applies OCR corrections and redactions to cases. All
// operations require a staff editor.
type EditorService interface {
	// ApplyCorrections patches page text and case metadata, rewrites the
	// body, and records a correction log entry.
	ApplyCorrections(ctx context.Context, editor *model.User, caseID int64, in CorrectionInput) (*model.CorrectionLog, error)

	// SetRedaction hides a passage of the case text. kind selects the
	// replacement: "redact" or "elide".
	SetRedaction(ctx context.Context, editor *model.User, caseID int64, kind, text string) error

	// ClearRedaction removes a stored redaction or elision.
	ClearRedaction(ctx context.Context, editor *model.User, caseID int64, kind, text string) error
}

type editorService struct {
	cases repository.CaseRepository
}

// NewEditorService constructs an EditorService.
func NewEditorService(cases repository.CaseRepository) EditorService {
	return &editorService{cases: cases}
}

func (s *editorService) findCase(ctx context.Context, caseID int64) (*model.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func pair(v []any) (string, string, bool) {
	if len(v) != 2 {
		return "", "", false
	}
	oldVal, okOld := v[0].(string)
	newVal, okNew := v[1].(string)
	return oldVal, newVal, okOld && okNew
}

// parseDecisionDate accepts the partial-precision dates found in scanned
// volumes: full date, year-month or bare year.
func parseDecisionDate(s string) (*time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized decision date %q", s)
}

func (s *editorService) ApplyCorrections(ctx context.Context, editor *model.User, caseID int64, in CorrectionInput) (*model.CorrectionLog, error) {
	if editor == nil || !editor.IsStaff {
		return nil, ErrStaffOnly
	}
	c, err := s.findCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	caseChanged := false
	for field, vals := range in.Metadata {
		switch field {
		case fieldName:
			oldVal, newVal, ok := pair(vals)
			if !ok {
				continue
			}
			if c.Name != oldVal {
				return nil, ErrStaleEdit
			}
			c.Name = newVal
			caseChanged = true
		case fieldDecisionDateOriginal:
			oldVal, newVal, ok := pair(vals)
			if !ok {
				continue
			}
			if c.DecisionDateOriginal != oldVal {
				return nil, ErrStaleEdit
			}
			parsed, err := parseDecisionDate(newVal)
			if err != nil {
				return nil, err
			}
			c.DecisionDateOriginal = newVal
			c.DecisionDate = parsed
			caseChanged = true
		case fieldHumanCorrected:
			if len(vals) == 2 {
				if v, ok := vals[1].(bool); ok {
					c.HumanCorrected = v
					caseChanged = true
				}
			}
		}
		// Unknown fields are ignored.
	}

	replacements := make([]string, 0, len(in.EditList)*2)
	if len(in.EditList) > 0 {
		pages, err := s.cases.GetPages(ctx, caseID)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]*model.CasePage, len(pages))
		for i := range pages {
			byID[pages[i].ID] = &pages[i]
		}

		for pageID, blocks := range in.EditList {
			page, ok := byID[pageID]
			if !ok {
				return nil, fmt.Errorf("unknown page %q", pageID)
			}
			pageChanged := false
			for blockID, lines := range blocks {
				block, ok := page.Blocks[blockID]
				if !ok {
					return nil, fmt.Errorf("unknown block %q on page %q", blockID, pageID)
				}
				for lineNo, vals := range lines {
					n, err := strconv.Atoi(lineNo)
					if err != nil || n < 0 || n >= len(block) {
						return nil, fmt.Errorf("bad line number %q in block %q", lineNo, blockID)
					}
					oldVal, newVal, ok := pair(vals)
					if !ok {
						return nil, fmt.Errorf("bad edit pair for line %s of block %q", lineNo, blockID)
					}
					if block[n] != oldVal {
						return nil, ErrStaleEdit
					}
					block[n] = newVal
					replacements = append(replacements, oldVal, newVal)
					pageChanged = true
				}
				page.Blocks[blockID] = block
			}
			if pageChanged {
				if err := s.cases.UpdatePage(ctx, page); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(replacements) > 0 {
		body, err := s.cases.GetBody(ctx, caseID)
		if err != nil {
			return nil, err
		}
		body.HTML = strings.NewReplacer(replacements...).Replace(body.HTML)
		if err := s.cases.UpdateBody(ctx, body); err != nil {
			return nil, err
		}
	}

	if caseChanged {
		if err := s.cases.Update(ctx, c); err != nil {
			return nil, err
		}
	}

	return s.cases.AddCorrectionLog(ctx, &model.CorrectionLog{
		CaseID:      caseID,
		UserID:      editor.ID,
		Description: in.Description,
	})
}

func (s *editorService) SetRedaction(ctx context.Context, editor *model.User, caseID int64, kind, text string) error {
	if editor == nil || !editor.IsStaff {
		return ErrStaffOnly
	}
	c, err := s.findCase(ctx, caseID)
	if err != nil {
		return err
	}
	switch kind {
	case RedactionKindRedact:
		if c.NoIndexRedacted == nil {
			c.NoIndexRedacted = map[string]string{}
		}
		c.NoIndexRedacted[text] = redactedText
	case RedactionKindElide:
		if c.NoIndexElided == nil {
			c.NoIndexElided = map[string]string{}
		}
		c.NoIndexElided[text] = elidedText
	default:
		return ErrBadRedactionKind
	}
	return s.cases.Update(ctx, c)
}

func (s *editorService) ClearRedaction(ctx context.Context, editor *model.User, caseID int64, kind, text string) error {
	if editor == nil || !editor.IsStaff {
		return ErrStaffOnly
	}
	c, err := s.findCase(ctx, caseID)
	if err != nil {
		return err
	}
	switch kind {
	case RedactionKindRedact:
		delete(c.NoIndexRedacted, text)
	case RedactionKindElide:
		delete(c.NoIndexElided, text)
	default:
		return ErrBadRedactionKind
	}
	return s.cases.Update(ctx, c)
}
