package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/app"
	"github.com/Omartinezpaz/sistema-sorteo-sub001/internal/domain"
)

func TestHandleGenerateTickets(t *testing.T) {
	t.Parallel()

	result := app.GenerateResult{
		TotalGenerated: 130,
		PerRegion:      map[string]int{"01": 100, "02": 30},
		Warnings:       []app.Warning{{Region: "02", Shortfall: 20}},
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success with shortfall warning",
			body:           `{"prefix":"SRT"}`,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"shortfall":20`,
		},
		{
			name:           "missing prefix",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "prefix_required",
		},
		{
			name:           "no allocations yet",
			body:           `{"prefix":"SRT"}`,
			serviceErr:     domain.ErrNoAllocations,
			expectedStatus: http.StatusConflict,
			expectedSubstr: "no_allocations",
		},
		{
			name:           "already running",
			body:           `{"prefix":"SRT"}`,
			serviceErr:     domain.ErrGenerationInProgress,
			expectedStatus: http.StatusConflict,
			expectedSubstr: "generation_in_progress",
		},
		{
			name:           "event closed",
			body:           `{"prefix":"SRT"}`,
			serviceErr:     &domain.StateError{Op: "ticket generation", Status: domain.StatusClosed},
			expectedStatus: http.StatusConflict,
			expectedSubstr: "invalid_state",
		},
		{
			name:           "partial failure",
			body:           `{"prefix":"SRT"}`,
			serviceErr:     &app.PartialGenerationError{Committed: 40, Err: context.DeadlineExceeded},
			expectedStatus: http.StatusInternalServerError,
			expectedSubstr: "internal_error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubGeneratorService{result: result, err: tt.serviceErr}
			mux := NewRouter(Services{Generator: svc})
			req := httptest.NewRequest(http.MethodPost, "/events/ev-1/tickets/generate", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleGenerationProgress(t *testing.T) {
	t.Parallel()

	t.Run("never started", func(t *testing.T) {
		t.Parallel()
		svc := &stubGeneratorService{}
		mux := NewRouter(Services{Generator: svc})
		req := httptest.NewRequest(http.MethodGet, "/events/ev-1/tickets/progress", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"started":false`) {
			t.Fatalf("expected not-started payload, got %q", rec.Body.String())
		}
	})

	t.Run("snapshot", func(t *testing.T) {
		t.Parallel()
		svc := &stubGeneratorService{progress: &domain.GenerationProgress{
			TotalTarget:   150,
			Generated:     100,
			Percentage:    66.67,
			CurrentRegion: "05",
			RegionsDone:   1,
			RegionsTotal:  2,
			UpdatedAt:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		}}
		mux := NewRouter(Services{Generator: svc})
		req := httptest.NewRequest(http.MethodGet, "/events/ev-1/tickets/progress", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		body := rec.Body.String()
		for _, substr := range []string{`"started":true`, `"generated":100`, `"current_region":"05"`} {
			if !strings.Contains(body, substr) {
				t.Fatalf("expected %q in payload, got %q", substr, body)
			}
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		t.Parallel()
		svc := &stubGeneratorService{err: domain.ErrEventNotFound}
		mux := NewRouter(Services{Generator: svc})
		req := httptest.NewRequest(http.MethodGet, "/events/ev-1/tickets/progress", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

type stubGeneratorService struct {
	result   app.GenerateResult
	progress *domain.GenerationProgress
	err      error
}

func (s *stubGeneratorService) Generate(_ context.Context, _ app.GenerateInput) (app.GenerateResult, error) {
	if s.err != nil {
		return app.GenerateResult{}, s.err
	}
	return s.result, nil
}

func (s *stubGeneratorService) Progress(_ context.Context, _ string) (*domain.GenerationProgress, error) {
	return s.progress, s.err
}
