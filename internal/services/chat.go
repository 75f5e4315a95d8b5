package services

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"stadtwache/internal/domain"
	"stadtwache/internal/validation"
)

const chatButtonsEntity = "chat_buttons"

func (s *Server) listPublicButtons(w http.ResponseWriter, r *http.Request) {
	buttons, err := Load(r.Context(), s.cache, chatButtonsEntity, "public", func() ([]domain.ChatButton, error) {
		buttons := []domain.ChatButton{}
		err := s.db.WithContext(r.Context()).Where("active = ?", true).Order("sort_order ASC").Order("created_at ASC").Find(&buttons).Error
		if err != nil {
			return nil, Internal("failed to list chat buttons", err)
		}
		return buttons, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buttons)
}

func (s *Server) listAdminButtons(w http.ResponseWriter, r *http.Request) {
	list(s, w, r, []domain.ChatButton{}, "sort_order ASC")
}

func (s *Server) createButton(w http.ResponseWriter, r *http.Request) {
	var in domain.ChatButtonInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormChatButton, in); err != nil {
		s.writeError(w, r, err)
		return
	}

	button := domain.ChatButton{
		Label:  strings.TrimSpace(in.Label),
		Action: in.Action,
		Value:  strings.TrimSpace(in.Value),
		Order:  in.Order,
		Active: true,
	}
	if in.Active != nil {
		button.Active = *in.Active
	}
	if err := s.db.WithContext(r.Context()).Create(&button).Error; err != nil {
		s.writeError(w, r, Internal("failed to create chat button", err))
		return
	}

	s.log.Info("chat button created", zap.String("id", button.ID), zap.String("action", button.Action))
	s.cache.Invalidate(r.Context(), chatButtonsEntity)
	writeJSON(w, http.StatusCreated, button)
}

func (s *Server) updateButton(w http.ResponseWriter, r *http.Request) {
	id := s.pathVar(r, "id")

	var patch domain.ChatButtonPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormChatButtonPatch, patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	var button domain.ChatButton
	if err := s.db.WithContext(r.Context()).First(&button, "id = ?", id).Error; err != nil {
		s.writeError(w, r, lookupError(err, "chat button %s not found", id))
		return
	}
	patch.Apply(&button)
	if err := s.db.WithContext(r.Context()).Save(&button).Error; err != nil {
		s.writeError(w, r, Internal("failed to update chat button", err))
		return
	}

	s.cache.Invalidate(r.Context(), chatButtonsEntity)
	writeJSON(w, http.StatusOK, button)
}

func (s *Server) deleteButton(w http.ResponseWriter, r *http.Request) {
	id := s.pathVar(r, "id")

	res := s.db.WithContext(r.Context()).Delete(&domain.ChatButton{}, "id = ?", id)
	if res.Error != nil {
		s.writeError(w, r, Internal("failed to delete chat button", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		s.writeError(w, r, NotFound("chat button %s not found", id))
		return
	}

	s.log.Info("chat button deleted", zap.String("id", id))
	s.cache.Invalidate(r.Context(), chatButtonsEntity)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat button deleted"})
}
