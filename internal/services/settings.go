package services

import (
	"net/http"

	"gorm.io/gorm"

	"stadtwache/internal/domain"
	"stadtwache/internal/util"
	"stadtwache/internal/validation"
)

const (
	homepageEntity   = "homepage"
	aboutEntity      = "about"
	chatWidgetEntity = "chat_widget"
)

func singleton[T any](db *gorm.DB) (T, error) {
	var v T
	err := db.First(&v, domain.SingletonID).Error
	return v, err
}

func getSingleton[T any](s *Server, w http.ResponseWriter, r *http.Request, entity string) {
	v, err := Load(r.Context(), s.cache, entity, "public", func() (T, error) {
		v, err := singleton[T](s.db.WithContext(r.Context()))
		if err != nil {
			return v, lookupError(err, "%s configuration missing", entity)
		}
		return v, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// saveSingleton loads the singleton, lets apply patch it, saves and answers with the result
func saveSingleton[T any](s *Server, w http.ResponseWriter, r *http.Request, entity string, apply func(*T)) {
	db := s.db.WithContext(r.Context())
	v, err := singleton[T](db)
	if err != nil {
		s.writeError(w, r, lookupError(err, "%s configuration missing", entity))
		return
	}
	apply(&v)
	if err := db.Save(&v).Error; err != nil {
		s.writeError(w, r, Internal("failed to save "+entity, err))
		return
	}
	s.cache.Invalidate(r.Context(), entity)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) getHomepage(w http.ResponseWriter, r *http.Request) {
	getSingleton[domain.HomepageConfig](s, w, r, homepageEntity)
}

func (s *Server) getAbout(w http.ResponseWriter, r *http.Request) {
	getSingleton[domain.AboutConfig](s, w, r, aboutEntity)
}

func (s *Server) getChatWidget(w http.ResponseWriter, r *http.Request) {
	getSingleton[domain.ChatWidgetConfig](s, w, r, chatWidgetEntity)
}

func (s *Server) updateHomepage(w http.ResponseWriter, r *http.Request) {
	s.limitBody(w, r)

	var patch domain.HomepagePatch
	var image *string
	if isMultipart(r) {
		if err := s.parseMultipart(r); err != nil {
			s.writeError(w, r, err)
			return
		}
		show, err := formBool(r, "show_latest_news")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		patch = domain.HomepagePatch{
			HeroTitle:       formValue(r, "hero_title"),
			HeroSubtitle:    formValue(r, "hero_subtitle"),
			EmergencyNumber: formValue(r, "emergency_number"),
			PhoneNumber:     formValue(r, "phone_number"),
			Email:           formValue(r, "email"),
			Address:         formValue(r, "address"),
			OpeningHours:    formValue(r, "opening_hours"),
			ShowLatestNews:  show,
		}
	} else if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormHomepagePatch, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if isMultipart(r) {
		var err error
		if image, err = s.saveUpload(r, "hero_image", "hero", util.ImageExtensions); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	saveSingleton(s, w, r, homepageEntity, func(h *domain.HomepageConfig) {
		patch.Apply(h)
		if image != nil {
			h.HeroImage = image
		}
	})
}

func (s *Server) updateAbout(w http.ResponseWriter, r *http.Request) {
	s.limitBody(w, r)

	var patch domain.AboutPatch
	var image *string
	if isMultipart(r) {
		if err := s.parseMultipart(r); err != nil {
			s.writeError(w, r, err)
			return
		}
		patch = domain.AboutPatch{
			Title:    formValue(r, "title"),
			Subtitle: formValue(r, "subtitle"),
			Content:  formValue(r, "content"),
			Mission:  formValue(r, "mission"),
			Vision:   formValue(r, "vision"),
			Values:   formValue(r, "values"),
			History:  formValue(r, "history"),
		}
	} else if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormAboutPatch, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if isMultipart(r) {
		var err error
		if image, err = s.saveUpload(r, "about_image", "about", util.ImageExtensions); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	saveSingleton(s, w, r, aboutEntity, func(a *domain.AboutConfig) {
		patch.Apply(a)
		if image != nil {
			a.Image = image
		}
	})
}

func (s *Server) updateChatWidget(w http.ResponseWriter, r *http.Request) {
	var patch domain.ChatWidgetPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormChatWidgetPatch, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	saveSingleton(s, w, r, chatWidgetEntity, patch.Apply)
}
