package services

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"stadtwache/internal/domain"
	"stadtwache/internal/metrics"
	"stadtwache/internal/util"
	"stadtwache/internal/validation"
)

func (s *Server) createApplication(w http.ResponseWriter, r *http.Request) {
	if err := s.allowSubmission(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.limitBody(w, r)

	var in domain.ApplicationInput
	var cv *string
	if isMultipart(r) {
		if err := s.parseMultipart(r); err != nil {
			s.writeError(w, r, err)
			return
		}
		in = domain.ApplicationInput{
			Name:     formString(r, "name"),
			Email:    formString(r, "email"),
			Phone:    formString(r, "phone"),
			Position: formString(r, "position"),
			Message:  formString(r, "message"),
		}
	} else if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := validation.Validate(validation.FormApplication, in); err != nil {
		s.writeError(w, r, err)
		return
	}

	if isMultipart(r) {
		var err error
		if cv, err = s.saveUpload(r, "cv_file", "cv", util.CVExtensions); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	app := domain.Application{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:      strings.TrimSpace(in.Phone),
		Position:   in.Position,
		Message:    strings.TrimSpace(in.Message),
		CVFilename: cv,
		Status:     domain.ApplicationPending,
	}
	if err := s.db.WithContext(r.Context()).Create(&app).Error; err != nil {
		s.writeError(w, r, Internal("failed to save application", err))
		return
	}

	s.log.Info("application received", zap.String("id", app.ID), zap.String("position", app.Position), zap.Bool("cv", cv != nil))
	metrics.RecordSubmission("application")
	s.background(func(ctx context.Context) { s.notifier.Application(ctx, &app) })
	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) listApplications(w http.ResponseWriter, r *http.Request) {
	list(s, w, r, []domain.Application{}, "created_at DESC")
}

func (s *Server) createFeedback(w http.ResponseWriter, r *http.Request) {
	if err := s.allowSubmission(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	var in domain.FeedbackInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormFeedback, in); err != nil {
		s.writeError(w, r, err)
		return
	}

	fb := domain.Feedback{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		Rating:  in.Rating,
		Status:  domain.FeedbackNew,
	}
	if err := s.db.WithContext(r.Context()).Create(&fb).Error; err != nil {
		s.writeError(w, r, Internal("failed to save feedback", err))
		return
	}

	s.log.Info("feedback received", zap.String("id", fb.ID), zap.Int("rating", fb.Rating))
	metrics.RecordSubmission("feedback")
	writeJSON(w, http.StatusCreated, fb)
}

func (s *Server) listFeedback(w http.ResponseWriter, r *http.Request) {
	list(s, w, r, []domain.Feedback{}, "created_at DESC")
}

func (s *Server) reportTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.IncidentTypes)
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	if err := s.allowSubmission(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	var in domain.ReportInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormReport, in); err != nil {
		s.writeError(w, r, err)
		return
	}

	report := domain.Report{
		IncidentType:        in.IncidentType,
		Description:         strings.TrimSpace(in.Description),
		Location:            strings.TrimSpace(in.Location),
		IncidentDate:        in.IncidentDate,
		IncidentTime:        in.IncidentTime,
		ReporterName:        strings.TrimSpace(in.ReporterName),
		ReporterEmail:       strings.ToLower(strings.TrimSpace(in.ReporterEmail)),
		ReporterPhone:       strings.TrimSpace(in.ReporterPhone),
		IsWitness:           in.IsWitness,
		WitnessesPresent:    in.WitnessesPresent,
		WitnessDetails:      in.WitnessDetails,
		EvidenceAvailable:   in.EvidenceAvailable,
		EvidenceDescription: in.EvidenceDescription,
		AdditionalInfo:      in.AdditionalInfo,
		Status:              domain.ReportNew,
	}
	if err := s.db.WithContext(r.Context()).Create(&report).Error; err != nil {
		s.writeError(w, r, Internal("failed to save report", err))
		return
	}

	s.log.Info("report received", zap.String("id", report.ID), zap.String("type", report.IncidentType))
	metrics.RecordSubmission("report")
	s.background(func(ctx context.Context) { s.notifier.Report(ctx, &report) })
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	list(s, w, r, []domain.Report{}, "created_at DESC")
}

func (s *Server) createChatMessage(w http.ResponseWriter, r *http.Request) {
	if err := s.allowSubmission(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	var in domain.ChatMessageInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormChatMessage, in); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg := domain.ChatMessage{
		VisitorName:  strings.TrimSpace(in.VisitorName),
		VisitorEmail: strings.ToLower(strings.TrimSpace(in.VisitorEmail)),
		Message:      strings.TrimSpace(in.Message),
		Status:       domain.MessageNew,
	}
	if err := s.db.WithContext(r.Context()).Create(&msg).Error; err != nil {
		s.writeError(w, r, Internal("failed to save chat message", err))
		return
	}

	s.log.Info("chat message received", zap.String("id", msg.ID))
	metrics.RecordSubmission("chat_message")
	s.background(func(ctx context.Context) { s.notifier.ChatMessage(ctx, &msg) })
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) listChatMessages(w http.ResponseWriter, r *http.Request) {
	list(s, w, r, []domain.ChatMessage{}, "created_at DESC")
}

// list writes every record of the slice's element type in the given order
func list[T any](s *Server, w http.ResponseWriter, r *http.Request, dst []T, order string) {
	if err := s.db.WithContext(r.Context()).Order(order).Find(&dst).Error; err != nil {
		s.writeError(w, r, Internal("failed to list records", err))
		return
	}
	writeJSON(w, http.StatusOK, dst)
}
