package services

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stadtwache/internal/domain"
	"stadtwache/internal/validation"
)

// LatestNewsCount is the number of items served by /api/news/latest
const LatestNewsCount = 3

const newsEntity = "news"

func (s *Server) publishedNews(r *http.Request, limit int) ([]domain.NewsItem, error) {
	items := []domain.NewsItem{}
	q := s.db.WithContext(r.Context()).Where("published = ?", true).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, Internal("failed to list news", err)
	}
	return items, nil
}

func (s *Server) listPublicNews(w http.ResponseWriter, r *http.Request) {
	items, err := Load(r.Context(), s.cache, newsEntity, "public", func() ([]domain.NewsItem, error) {
		return s.publishedNews(r, 0)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) latestNews(w http.ResponseWriter, r *http.Request) {
	items, err := Load(r.Context(), s.cache, newsEntity, "latest", func() ([]domain.NewsItem, error) {
		return s.publishedNews(r, LatestNewsCount)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) listAdminNews(w http.ResponseWriter, r *http.Request) {
	items := []domain.NewsItem{}
	if err := s.db.WithContext(r.Context()).Order("date DESC").Find(&items).Error; err != nil {
		s.writeError(w, r, Internal("failed to list news", err))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createNews(w http.ResponseWriter, r *http.Request) {
	var in domain.NewsInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormNews, in); err != nil {
		s.writeError(w, r, err)
		return
	}

	item := domain.NewsItem{
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		Priority:  in.Priority,
		Published: true,
	}
	if in.Published != nil {
		item.Published = *in.Published
	}
	if err := s.db.WithContext(r.Context()).Create(&item).Error; err != nil {
		s.writeError(w, r, Internal("failed to create news item", err))
		return
	}

	s.log.Info("news item created", zap.String("id", item.ID), zap.Bool("published", item.Published))
	s.cache.Invalidate(r.Context(), newsEntity, "public", "latest")
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) updateNews(w http.ResponseWriter, r *http.Request) {
	id := s.pathVar(r, "id")

	var patch domain.NewsPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.FormNewsPatch, patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	var item domain.NewsItem
	if err := s.db.WithContext(r.Context()).First(&item, "id = ?", id).Error; err != nil {
		s.writeError(w, r, lookupError(err, "news item %s not found", id))
		return
	}
	patch.Apply(&item)
	if err := s.db.WithContext(r.Context()).Save(&item).Error; err != nil {
		s.writeError(w, r, Internal("failed to update news item", err))
		return
	}

	s.cache.Invalidate(r.Context(), newsEntity, "public", "latest")
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteNews(w http.ResponseWriter, r *http.Request) {
	id := s.pathVar(r, "id")

	res := s.db.WithContext(r.Context()).Delete(&domain.NewsItem{}, "id = ?", id)
	if res.Error != nil {
		s.writeError(w, r, Internal("failed to delete news item", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		s.writeError(w, r, NotFound("news item %s not found", id))
		return
	}

	s.log.Info("news item deleted", zap.String("id", id))
	s.cache.Invalidate(r.Context(), newsEntity, "public", "latest")
	writeJSON(w, http.StatusOK, map[string]string{"message": "News item deleted"})
}

func lookupError(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(format, args...)
	}
	return Internal("database lookup failed", err)
}
