// Package bugreports stores problem reports sent by staff. Reports are
// write-only.
package bugreports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/coffeepos-backend/internal/repo"
	"github.com/angelmondragon/coffeepos-backend/pkg/db/models"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
)

const MaxTextLen = 4000

type Repository interface {
	Create(ctx context.Context, report *models.BugReport) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, report *models.BugReport) error {
	return r.DB(ctx).Create(report).Error
}

// Receipt acknowledges a stored report.
type Receipt struct {
	ID         uuid.UUID `json:"id"`
	ReportedAt time.Time `json:"reported_at"`
}

type Service interface {
	Submit(ctx context.Context, staffID string, role enums.StaffRole, text string) (*Receipt, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bug report repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// Submit stores text on behalf of staffID. An empty role is stored as NULL.
func (s *service) Submit(ctx context.Context, staffID string, role enums.StaffRole, text string) (*Receipt, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity missing")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report text is required")
	}
	if len([]rune(text)) > MaxTextLen {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "report text must be at most %d characters", MaxTextLen)
	}

	report := models.BugReport{
		ID:         uuid.New(),
		StaffID:    staffID,
		ReportText: text,
		ReportedAt: s.now().UTC(),
	}
	if role != "" {
		if !role.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid role %q", role)
		}
		label := role.String()
		report.StaffRole = &label
	}

	if err := s.repo.Create(ctx, &report); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "store bug report failed")
		return nil, pkgerrors.Store(err, "store bug report")
	}

	s.logg.Info(s.logg.WithFields(s.logg.WithStaffID(ctx, staffID), map[string]any{
		"bug_report_id": report.ID.String(),
		"length":        len([]rune(text)),
	}), "bug report received")
	return &Receipt{ID: report.ID, ReportedAt: report.ReportedAt}, nil
}
