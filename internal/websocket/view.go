package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
)

// Client actions driving a live monthly view
const (
	ActionViewOpen    = "view.open"
	ActionViewStep    = "view.step"
	ActionViewToggle  = "view.toggle"
	ActionViewRefresh = "view.refresh"
)

// ViewController owns one connection's monthly view. Implementations push
// results through the callback given to their factory; the methods only
// report whether the request was accepted and computed.
type ViewController interface {
	Open(ctx context.Context, month domain.MonthSelector, filter domain.CategoryFilterSet) error
	Step(ctx context.Context, delta int) error
	Toggle(ctx context.Context, categoryID uuid.UUID) error
	Reload(ctx context.Context) error
	Close()
}

// ViewControllerFactory builds a controller for a user's connection; push
// delivers events to that connection only.
type ViewControllerFactory func(userID uuid.UUID, push func(Event)) ViewController

// ClientMessage is a request sent by the client over the socket
type ClientMessage struct {
	Action     string   `json:"action"`
	Month      string   `json:"month,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Delta      int      `json:"delta,omitempty"`
	CategoryID string   `json:"categoryId,omitempty"`
}

// ViewErrorPayload is the payload of a view.error event
type ViewErrorPayload struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// viewRequest is a parsed ClientMessage ready to run against a controller
type viewRequest struct {
	action string
	run    func(ctx context.Context, view ViewController) error
}

func parseClientMessage(raw []byte, now time.Time) (*viewRequest, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	switch msg.Action {
	case ActionViewOpen:
		month := domain.MonthOf(now)
		if msg.Month != "" {
			parsed, err := domain.ParseMonthSelector(msg.Month)
			if err != nil {
				return nil, err
			}
			month = parsed
		}
		filter, err := domain.ParseCategoryFilterSet(strings.Join(msg.Categories, ","))
		if err != nil {
			return nil, err
		}
		return &viewRequest{action: msg.Action, run: func(ctx context.Context, view ViewController) error {
			return view.Open(ctx, month, filter)
		}}, nil

	case ActionViewStep:
		delta := msg.Delta
		if delta > domain.MaxMonthDelta || delta < -domain.MaxMonthDelta {
			return nil, domain.NewValidationError("delta", fmt.Sprintf("delta must be between -%d and %d", domain.MaxMonthDelta, domain.MaxMonthDelta))
		}
		return &viewRequest{action: msg.Action, run: func(ctx context.Context, view ViewController) error {
			return view.Step(ctx, delta)
		}}, nil

	case ActionViewToggle:
		id, err := uuid.Parse(msg.CategoryID)
		if err != nil {
			return nil, domain.NewParseError("categoryId", msg.CategoryID, err)
		}
		return &viewRequest{action: msg.Action, run: func(ctx context.Context, view ViewController) error {
			return view.Toggle(ctx, id)
		}}, nil

	case ActionViewRefresh:
		return &viewRequest{action: msg.Action, run: func(ctx context.Context, view ViewController) error {
			return view.Reload(ctx)
		}}, nil

	default:
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
}
