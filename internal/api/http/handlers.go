package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/analytics"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/mail"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/tcsync"
	"github.com/samber/lo"
)

// calc computes a response from a fresh snapshot. Results are rounded by the caller.
type calc func(r *http.Request, snap *entity.Snapshot, rg analytics.Range) any

// withSnapshot parses the optional start/end month bounds, loads a snapshot and writes
// the result of f as JSON.
func (s *Server) withSnapshot(f calc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		rg, err := analytics.ParseRange(q.Get("start"), q.Get("end"))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s.serveSnapshot(w, r, func(snap *entity.Snapshot) any { return f(r, snap, rg) })
	}
}

// withSnapshotOnly serves calculators that cover all months; start and end are ignored.
func (s *Server) withSnapshotOnly(f func(snap *entity.Snapshot) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveSnapshot(w, r, f)
	}
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request, f func(snap *entity.Snapshot) any) {
	snap, err := s.repo.Snapshot(r.Context())
	if err != nil {
		internalError(w, r, "can't load snapshot", err)
		return
	}
	writeJSON(w, r, http.StatusOK, f(snap))
}

func (s *Server) totalCommission(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.TotalCommission(snap, rg).Rounded()
	})(w, r)
}

func (s *Server) avgCommission(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.AverageCommissionRate(snap, rg).Rounded()
	})(w, r)
}

func (s *Server) lessonHours(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.LessonHours(snap, rg).Rounded()
	})(w, r)
}

// uniqueStudents accepts repeated status parameters, all statuses when none are given.
func (s *Server) uniqueStudents(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(r *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.UniqueStudents(snap, rg, r.URL.Query()["status"]...).Rounded()
	})(w, r)
}

func (s *Server) appointmentSummary(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.AppointmentSummary(snap, rg).Rounded()
	})(w, r)
}

func (s *Server) commissionByJob(w http.ResponseWriter, r *http.Request) {
	s.withSnapshotOnly(func(snap *entity.Snapshot) any {
		return lo.Map(s.engine.CommissionByJob(snap), func(j entity.JobCommission, _ int) entity.JobCommission {
			return j.Rounded()
		})
	})(w, r)
}

func (s *Server) completeCommission(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.CompleteCommission(snap, rg).Rounded()
	})(w, r)
}

func (s *Server) adHocRevenue(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.AdHocNetRevenue(snap, rg).Rounded()
	})(w, r)
}

func (s *Server) enquiries(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.Enquiries(snap, rg)
	})(w, r)
}

func (s *Server) enquiryConversion(w http.ResponseWriter, r *http.Request) {
	s.withSnapshotOnly(func(snap *entity.Snapshot) any {
		return s.engine.EnquiryConversion(snap)
	})(w, r)
}

func (s *Server) studentStarts(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.StudentStarts(snap, rg)
	})(w, r)
}

func (s *Server) studentFinishes(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.StudentFinishes(snap, rg)
	})(w, r)
}

func (s *Server) totalIncome(w http.ResponseWriter, r *http.Request) {
	s.withSnapshot(func(_ *http.Request, snap *entity.Snapshot, rg analytics.Range) any {
		return s.engine.TotalIncome(snap, rg).Rounded()
	})(w, r)
}

type lastSyncedResponse struct {
	LastSynced *time.Time `json:"lastSynced"`
}

func (s *Server) lastSynced(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.GetLastSynced(r.Context())
	if err != nil {
		internalError(w, r, "can't get last synced", err)
		return
	}
	writeJSON(w, r, http.StatusOK, lastSyncedResponse{LastSynced: t})
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) triggerSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "sync is disabled")
		return
	}
	err := s.syncer.Trigger()
	switch {
	case errors.Is(err, tcsync.ErrInProgress):
		writeError(w, r, http.StatusConflict, err.Error())
	case err != nil:
		internalError(w, r, "can't trigger sync", err)
	default:
		writeJSON(w, r, http.StatusAccepted, messageResponse{Message: "sync started in background"})
	}
}

func (s *Server) syncStatus(w http.ResponseWriter, r *http.Request) {
	ss, err := s.repo.GetLatestSyncStatuses(r.Context())
	if err != nil {
		internalError(w, r, "can't get sync statuses", err)
		return
	}
	if ss == nil {
		ss = []entity.SyncStatus{}
	}
	writeJSON(w, r, http.StatusOK, ss)
}

func (s *Server) opportunities(w http.ResponseWriter, r *http.Request) {
	services, err := s.repo.GetAvailableServices(r.Context())
	if err != nil {
		internalError(w, r, "can't get available services", err)
		return
	}
	html, err := s.mailer.RenderOpportunities(services)
	if err != nil {
		internalError(w, r, "can't render opportunities", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *Server) sendOpportunities(w http.ResponseWriter, r *http.Request) {
	services, err := s.repo.GetAvailableServices(r.Context())
	if err != nil {
		internalError(w, r, "can't get available services", err)
		return
	}
	err = s.mailer.SendOpportunities(r.Context(), services)
	switch {
	case errors.Is(err, mail.ErrNotConfigured):
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, mail.ErrLimitReached):
		writeError(w, r, http.StatusTooManyRequests, err.Error())
	case err != nil:
		internalError(w, r, "can't send opportunities", err)
	default:
		writeJSON(w, r, http.StatusAccepted, messageResponse{Message: "opportunities sent"})
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "ok"})
}
