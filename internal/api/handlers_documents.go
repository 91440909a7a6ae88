package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/rulebook/internal/doctree"
	"github.com/dgallion1/rulebook/internal/library"
	"github.com/dgallion1/rulebook/internal/parser"
	"github.com/dgallion1/rulebook/internal/source"
	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := []library.EntrySummary{}
	for _, e := range s.library.List() {
		docs = append(docs, e.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleUploadDocument parses an uploaded document synchronously. The
// document ID is derived from the content so re-uploads replace the entry.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	ex, err := parser.ForFile(filename, s.cfg.PDFFallbackPdftotext)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	opts, err := uploadOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	docID := library.ContentHashHex(data)[:16]

	entry, err := s.library.Load(r.Context(), docID, title, filename, opts, source.BytesSource(data), ex)
	if err != nil {
		s.log.Warn("upload parse failed", "filename", filename, "error", err)
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusCreated, entry.Summary())
}

// uploadOptions reads the optional skip_pages, start_page and footer form
// fields. Without a footer, form feeds from the extractor mark pages, and
// nothing is skipped unless skip_pages says so.
func uploadOptions(r *http.Request) (doctree.Options, error) {
	opts := doctree.Options{SkipPages: -1}
	if v := r.FormValue("skip_pages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return doctree.Options{}, fmt.Errorf("skip_pages must be a non-negative integer")
		}
		if n > 0 {
			opts.SkipPages = n
		}
	}
	if v := r.FormValue("start_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return doctree.Options{}, fmt.Errorf("start_page must be a positive integer")
		}
		opts.StartPage = n
	}
	if v := r.FormValue("footer"); v != "" {
		re, err := regexp.Compile(v)
		if err != nil {
			return doctree.Options{}, fmt.Errorf("invalid footer pattern: %v", err)
		}
		opts.FooterPattern = re
	}
	return opts, nil
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	entry := s.entry(w, r)
	if entry == nil {
		return
	}
	writeJSON(w, http.StatusOK, entry.Summary())
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	deleted, err := s.library.Delete(docID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !deleted {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}

func (s *Server) handleDocumentMarkdown(w http.ResponseWriter, r *http.Request) {
	entry := s.entry(w, r)
	if entry == nil {
		return
	}
	writeMarkdown(w, r, entry.Document.RenderMarkdown())
}

// entry resolves {docID} or writes a 404.
func (s *Server) entry(w http.ResponseWriter, r *http.Request) *library.Entry {
	docID := chi.URLParam(r, "docID")
	entry := s.library.Get(docID)
	if entry == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil
	}
	return entry
}

// writeMarkdown answers with markdown, or with HTML when ?format=html.
func writeMarkdown(w http.ResponseWriter, r *http.Request, md string) {
	if r.URL.Query().Get("format") != "html" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, md)
		return
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		jsonError(w, "render html: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
