package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"stadtwache/internal/util"
)

const multipartMemory = 8 << 20

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// limitBody caps the request body at the configured upload size
func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) {
	if s.uploads.MaxSizeBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxSizeBytes)
	}
}

func (s *Server) parseMultipart(r *http.Request) error {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return BadRequest("malformed multipart body")
	}
	return nil
}

// saveUpload stores the optional file part named field and returns its stored
// name, or nil when the part is absent.
func (s *Server) saveUpload(r *http.Request, field, prefix string, allowed []string) (*string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, BadRequest("unreadable file part " + field)
	}
	defer file.Close()
	if header.Filename == "" {
		return nil, nil
	}
	if header.Size == 0 {
		return nil, BadRequest("empty file " + field)
	}

	name, err := util.UploadName(prefix, header.Filename, allowed)
	if err != nil {
		return nil, BadRequest(fmt.Sprintf("file type not allowed, accepted: %s", strings.Join(allowed, ", ")))
	}
	if err := writeUpload(s.uploads.Dir, name, file); err != nil {
		return nil, Internal("failed to store upload", err)
	}
	return &name, nil
}

func writeUpload(dir, name string, src multipart.File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	name := s.pathVar(r, "filename")
	path, ok := util.SafeUploadPath(s.uploads.Dir, name)
	if !ok {
		s.writeError(w, r, NotFound("file %s not found", name))
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.writeError(w, r, NotFound("file %s not found", name))
		return
	}
	http.ServeFile(w, r, path)
}

// formValue returns a pointer to the trimmed multipart value of key, or nil when absent
func formValue(r *http.Request, key string) *string {
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}

func formBool(r *http.Request, key string) (*bool, error) {
	v := formValue(r, key)
	if v == nil {
		return nil, nil
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		return nil, BadRequest(key + " must be true or false")
	}
	return &b, nil
}

func formString(r *http.Request, key string) string {
	if v := formValue(r, key); v != nil {
		return *v
	}
	return ""
}

// allowSubmission applies the per-client rate limit on public forms
func (s *Server) allowSubmission(r *http.Request) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Allow(s.clientAddr(r)); err != nil {
		return TooManyRequests(err)
	}
	return nil
}

// clientAddr is the peer address, or the first X-Forwarded-For hop when the
// peer is a trusted proxy.
func (s *Server) clientAddr(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if !slices.Contains(s.proxies, peer) {
		return peer
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if hop := strings.TrimSpace(strings.Split(fwd, ",")[0]); hop != "" {
			return hop
		}
	}
	return peer
}
