package assembly

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
)

const maxLines = 50

// TargetKind says where a session's lines end up on commit.
type TargetKind string

const (
	TargetNewOrder      TargetKind = "new_order"
	TargetExistingOrder TargetKind = "existing_order"
)

// IsValid reports whether the value is a known TargetKind.
func (k TargetKind) IsValid() bool {
	return k == TargetNewOrder || k == TargetExistingOrder
}

// Target is the commit destination of a session. DailySequenceNumber is the
// existing order's number, captured when the session started.
type Target struct {
	Kind                TargetKind `json:"kind"`
	OrderID             *uuid.UUID `json:"order_id,omitempty"`
	DailySequenceNumber int        `json:"daily_sequence_number,omitempty"`
}

// Line is one accumulated entry. Two lines are the same when Name and Price
// match exactly.
type Line struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Details  *string         `json:"details,omitempty"`
}

// Total is Price x Quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Session is the in-progress order of one staff member.
type Session struct {
	StaffID   string          `json:"staff_id"`
	Target    Target          `json:"target"`
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	StartedAt time.Time       `json:"started_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newSession(staffID string, target Target, now time.Time) *Session {
	return &Session{
		StaffID:   staffID,
		Target:    target,
		Lines:     []Line{},
		Total:     decimal.Zero,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// AddLine merges line into an existing entry with the same name and price, or
// appends it. The running total is recomputed either way.
func (s *Session) AddLine(line Line) error {
	for i := range s.Lines {
		if s.Lines[i].Name != line.Name || !s.Lines[i].Price.Equal(line.Price) {
			continue
		}
		merged := s.Lines[i].Quantity + line.Quantity
		if merged > maxLineQuantity {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "quantity of %s would exceed %d", line.Name, maxLineQuantity)
		}
		s.Lines[i].Quantity = merged
		s.recompute()
		return nil
	}
	if len(s.Lines) >= maxLines {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "an order holds at most %d distinct lines", maxLines)
	}
	s.Lines = append(s.Lines, line)
	s.recompute()
	return nil
}

// RemoveLine drops the line at index.
func (s *Session) RemoveLine(index int) error {
	if index < 0 || index >= len(s.Lines) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "line %d not found", index)
	}
	s.Lines = append(s.Lines[:index], s.Lines[index+1:]...)
	s.recompute()
	return nil
}

// IsEmpty reports whether nothing was added yet.
func (s *Session) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s *Session) recompute() {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Total())
	}
	s.Total = total
}
