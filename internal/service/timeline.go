package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Cab789/capstone/internal/model"
	"github.com/Cab789/capstone/internal/repository"
)

var ErrNotTimelineOwner = errors.New("timeline belongs to another user")

// TimelineValidationError carries every problem found in a submitted
// timeline document.
type TimelineValidationError struct {
	Messages []string
}

func (e *TimelineValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Field kinds for timeline document validation.
type fieldKind int

const (
	kindString fieldKind = iota
	kindList
)

type fieldSpec struct {
	name     string
	kind     fieldKind
	required bool
}

var timelineFields = []fieldSpec{
	{name: "title", kind: kindString, required: true},
	{name: "subhead", kind: kindString},
	{name: "author", kind: kindString},
	{name: "categories", kind: kindList},
	{name: "cases", kind: kindList},
	{name: "events", kind: kindList},
}

var caseFields = []fieldSpec{
	{name: "id", kind: kindString},
	{name: "name", kind: kindString, required: true},
	{name: "citation", kind: kindString},
	{name: "url", kind: kindString},
	{name: "decision_date", kind: kindString},
	{name: "oral_argument_url", kind: kindString},
	{name: "long_description", kind: kindString},
	{name: "short_description", kind: kindString},
	{name: "jurisdiction", kind: kindString},
	{name: "reporter", kind: kindString},
	{name: "categories", kind: kindList},
}

var eventFields = []fieldSpec{
	{name: "id", kind: kindString},
	{name: "name", kind: kindString, required: true},
	{name: "start_date", kind: kindString, required: true},
	{name: "end_date", kind: kindString, required: true},
	{name: "short_description", kind: kindString},
	{name: "long_description", kind: kindString},
	{name: "color", kind: kindString},
	{name: "url", kind: kindString},
	{name: "categories", kind: kindList},
}

func kindMatches(v any, k fieldKind) bool {
	switch k {
	case kindString:
		_, ok := v.(string)
		return ok
	case kindList:
		_, ok := v.([]any)
		return ok
	}
	return false
}

func checkFields(obj map[string]any, specs []fieldSpec, missingPrefix, typePrefix string, out *[]string) {
	for _, spec := range specs {
		v, present := obj[spec.name]
		if !present || v == nil {
			if spec.required {
				*out = append(*out, missingPrefix+": "+spec.name)
			}
			continue
		}
		if !kindMatches(v, spec.kind) {
			*out = append(*out, typePrefix+" "+spec.name)
		}
	}
}

// validateTimelineDocument checks the document shape and collects every
// problem rather than stopping at the first.
func validateTimelineDocument(doc map[string]any) error {
	var msgs []string
	checkFields(doc, timelineFields, "Timeline Missing", "Wrong Data Type for", &msgs)

	if cases, ok := doc["cases"].([]any); ok {
		for _, raw := range cases {
			obj, ok := raw.(map[string]any)
			if !ok {
				msgs = append(msgs, "Wrong Data Type for cases")
				continue
			}
			checkFields(obj, caseFields, "Case Missing", "Case Has Wrong Data Type for", &msgs)
		}
	}
	if events, ok := doc["events"].([]any); ok {
		for _, raw := range events {
			obj, ok := raw.(map[string]any)
			if !ok {
				msgs = append(msgs, "Wrong Data Type for events")
				continue
			}
			checkFields(obj, eventFields, "Event Missing", "Event Has Wrong Data Type for", &msgs)
		}
	}

	if len(msgs) > 0 {
		return &TimelineValidationError{Messages: msgs}
	}
	return nil
}

// shortID is the compact identifier used for timelines and their entries.
func shortID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:12]
}

// backfillTimelineDocument fills in the pieces the frontend may omit: list
// fields default to empty and every case and event gets an id.
func backfillTimelineDocument(doc map[string]any) {
	for _, field := range []string{"categories", "cases", "events"} {
		if _, ok := doc[field].([]any); !ok {
			doc[field] = []any{}
		}
	}
	for _, field := range []string{"cases", "events"} {
		items := doc[field].([]any)
		for _, raw := range items {
			obj, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := obj["id"].(string); !ok || s == "" {
				obj["id"] = shortID()
			}
			if _, ok := obj["categories"].([]any); !ok {
				obj["categories"] = []any{}
			}
		}
	}
}

// TimelineService implements timeline CRUD with document validation.
// Timelines are publicly readable; writes are restricted to the creator.
type TimelineService interface {
	Create(ctx context.Context, userID string, doc json.RawMessage) (*model.Timeline, error)
	Get(ctx context.Context, id string) (*model.Timeline, error)
	ListByUser(ctx context.Context, userID string) ([]model.Timeline, error)
	Update(ctx context.Context, userID, id string, doc json.RawMessage) (*model.Timeline, error)
	Delete(ctx context.Context, userID, id string) error
}

type timelineService struct {
	timelines repository.TimelineRepository
}

// NewTimelineService constructs a TimelineService.
func NewTimelineService(timelines repository.TimelineRepository) TimelineService {
	return &timelineService{timelines: timelines}
}

func prepareDocument(raw json.RawMessage) (json.RawMessage, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &TimelineValidationError{Messages: []string{"Wrong Data Type for timeline"}}
	}
	if err := validateTimelineDocument(doc); err != nil {
		return nil, err
	}
	backfillTimelineDocument(doc)
	return json.Marshal(doc)
}

func (s *timelineService) Create(ctx context.Context, userID string, raw json.RawMessage) (*model.Timeline, error) {
	doc, err := prepareDocument(raw)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.timelines.Create(ctx, &model.Timeline{
		ID:        shortID(),
		CreatedBy: userID,
		Document:  doc,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *timelineService) Get(ctx context.Context, id string) (*model.Timeline, error) {
	t, err := s.timelines.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *timelineService) ListByUser(ctx context.Context, userID string) ([]model.Timeline, error) {
	return s.timelines.ListByUser(ctx, userID)
}

func (s *timelineService) Update(ctx context.Context, userID, id string, raw json.RawMessage) (*model.Timeline, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy != userID {
		return nil, ErrNotTimelineOwner
	}
	doc, err := prepareDocument(raw)
	if err != nil {
		return nil, err
	}
	existing.Document = doc
	if err := s.timelines.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *timelineService) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.CreatedBy != userID {
		return ErrNotTimelineOwner
	}
	return s.timelines.Delete(ctx, id)
}
