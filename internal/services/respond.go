package services

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"stadtwache/internal/domain"
	"stadtwache/internal/metrics"
	"stadtwache/internal/validation"
)

// transition moves the record with the path id of type T to a new status and
// stores the admin response. Re-transitioning a closed record is allowed.
func transition[T any](s *Server, w http.ResponseWriter, r *http.Request, entity string, form validation.Form, normalize func(string) string) {
	id := s.pathVar(r, "id")

	var in domain.StatusTransition
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(form, in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if normalize != nil {
		in.Status = normalize(in.Status)
	}

	updates := map[string]any{
		"status":     in.Status,
		"updated_at": time.Now().UTC(),
	}
	if in.AdminResponse != nil {
		resp := strings.TrimSpace(*in.AdminResponse)
		updates["admin_response"] = &resp
	}

	var record T
	db := s.db.WithContext(r.Context())
	res := db.Model(&record).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		s.writeError(w, r, Internal("failed to update status", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		s.writeError(w, r, NotFound("%s %s not found", entity, id))
		return
	}
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		s.writeError(w, r, lookupError(err, "%s %s not found", entity, id))
		return
	}

	s.log.Info("status changed", zap.String("entity", entity), zap.String("id", id), zap.String("status", in.Status))
	metrics.RecordStatusTransition(entity, in.Status)
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) respondApplication(w http.ResponseWriter, r *http.Request) {
	transition[domain.Application](s, w, r, "application", validation.FormApplicationTransition, nil)
}

func (s *Server) respondFeedback(w http.ResponseWriter, r *http.Request) {
	transition[domain.Feedback](s, w, r, "feedback", validation.FormFeedbackTransition, nil)
}

func (s *Server) updateReportStatus(w http.ResponseWriter, r *http.Request) {
	transition[domain.Report](s, w, r, "report", validation.FormReportTransition, domain.NormalizeReportStatus)
}

func (s *Server) respondChatMessage(w http.ResponseWriter, r *http.Request) {
	transition[domain.ChatMessage](s, w, r, "chat message", validation.FormMessageTransition, nil)
}
