package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/coffeepos-backend/internal/bugreports"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
)

type stubBugReportService struct {
	staffID string
	role    enums.StaffRole
	text    string
}

func (s *stubBugReportService) Submit(ctx context.Context, staffID string, role enums.StaffRole, text string) (*bugreports.Receipt, error) {
	s.staffID, s.role, s.text = staffID, role, text
	return &bugreports.Receipt{ID: uuid.New(), ReportedAt: time.Now()}, nil
}

func TestBugReportSubmit(t *testing.T) {
	svc := &stubBugReportService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bug-reports", strings.NewReader(`{"text":"printer jams"}`))
	req = withStaff(req, "tg:9", enums.StaffRoleBarista)
	rec := httptest.NewRecorder()
	BugReportSubmit(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if svc.staffID != "tg:9" || svc.role != enums.StaffRoleBarista || svc.text != "printer jams" {
		t.Fatalf("unexpected submission %+v", svc)
	}
}

func TestBugReportSubmitRequiresText(t *testing.T) {
	req := withStaff(httptest.NewRequest(http.MethodPost, "/api/v1/bug-reports", strings.NewReader(`{}`)), "tg:9", enums.StaffRoleBarista)
	rec := httptest.NewRecorder()
	BugReportSubmit(&stubBugReportService{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
