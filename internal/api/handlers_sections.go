package api

import (
	"net/http"

	"github.com/dgallion1/rulebook/internal/doctree"
	"github.com/go-chi/chi/v5"
)

type sectionResponse struct {
	Idx        string           `json:"idx"`
	Text       string           `json:"text"`
	Pages      doctree.PageSpan `json:"page"`
	Depth      int              `json:"depth"`
	Parent     string           `json:"parent,omitempty"`
	Children   []string         `json:"children"`
	Breadcrumb []string         `json:"breadcrumb"`
	Markdown   string           `json:"markdown"`
}

func newSectionResponse(s *doctree.Section) sectionResponse {
	resp := sectionResponse{
		Idx:        s.Idx,
		Text:       s.Text,
		Pages:      s.Pages,
		Depth:      s.Depth(),
		Children:   []string{},
		Breadcrumb: s.Breadcrumb(),
		Markdown:   s.Markdown(),
	}
	if p := s.Parent(); p != nil {
		resp.Parent = p.Idx
	}
	for _, c := range s.Children() {
		resp.Children = append(resp.Children, c.Idx)
	}
	if resp.Breadcrumb == nil {
		resp.Breadcrumb = []string{}
	}
	return resp
}

// section resolves {docID} and {idx} or writes a 404.
func (s *Server) section(w http.ResponseWriter, r *http.Request) *doctree.Section {
	entry := s.entry(w, r)
	if entry == nil {
		return nil
	}
	idx := chi.URLParam(r, "idx")
	sec, ok := entry.Document.GetSection(idx)
	if !ok {
		jsonError(w, "section not found: "+idx, http.StatusNotFound)
		return nil
	}
	return sec
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	sec := s.section(w, r)
	if sec == nil {
		return
	}
	writeJSON(w, http.StatusOK, newSectionResponse(sec))
}

func (s *Server) handleSectionMarkdown(w http.ResponseWriter, r *http.Request) {
	sec := s.section(w, r)
	if sec == nil {
		return
	}
	writeMarkdown(w, r, sec.Markdown())
}

func (s *Server) handleParseStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": s.library.Stats().Snapshot(),
	})
}
