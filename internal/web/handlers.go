package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/1Sheikhhamza/case-search-app/internal/document"
	"github.com/1Sheikhhamza/case-search-app/internal/extract"
	"github.com/1Sheikhhamza/case-search-app/internal/relay"
)

// User-facing empty-state messages, matching the result grid of the browser
// shell.
const (
	msgNoResults      = "No judgments found matching your criteria."
	msgNoValidRecords = "No valid records found after filtering."
)

type searchResponse struct {
	Outcome string               `json:"outcome"`
	Message string               `json:"message,omitempty"`
	Records []extract.CaseRecord `json:"records"`
}

type openDocumentRequest struct {
	Title       string `json:"title"`
	DocumentURL string `json:"document_url" binding:"required"`
}

type documentResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PageCount int    `json:"page_count"`
	Filename  string `json:"filename"`
}

// handleSearch forwards the caller's search parameters verbatim to the
// upstream site and extracts case records from the returned markup.
func (s *Server) handleSearch(c *gin.Context) {
	params := url.Values(c.Request.URL.Query())

	if year := params.Get("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil || y < 1900 || y > 2099 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Please enter a valid year between 1900 and 2099",
			})
			return
		}
	}

	markup, err := s.relay.Search(c.Request.Context(), params)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.engine.Extract(markup)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := searchResponse{
		Outcome: result.Outcome.String(),
		Records: result.Records,
	}
	switch result.Outcome {
	case extract.OutcomeNoResults:
		resp.Message = msgNoResults
	case extract.OutcomeNoValidRecords:
		resp.Message = msgNoValidRecords
	}

	c.JSON(http.StatusOK, resp)
}

// handleOpenDocument runs fetch → validate → stamp for a chosen record and
// returns a session id for the subsequent view/print/download actions.
func (s *Server) handleOpenDocument(c *gin.Context) {
	var req openDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_url is required"})
		return
	}

	if !strings.HasPrefix(req.DocumentURL, "http") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_url must be absolute"})
		return
	}

	sess, err := s.docs.OpenDocument(c.Request.Context(), req.Title, req.DocumentURL)
	if err != nil {
		s.writeError(c, err)
		return
	}

	id := s.sessions.Put(sess)
	c.JSON(http.StatusCreated, documentResponse{
		ID:        id,
		Title:     sess.Title,
		PageCount: sess.PageCount,
		Filename:  sess.DownloadFilename(),
	})
}

func (s *Server) handleDocumentInfo(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, documentResponse{
		ID:        c.Param("id"),
		Title:     sess.Title,
		PageCount: sess.PageCount,
		Filename:  sess.DownloadFilename(),
	})
}

// handlePage serves one rasterized page as PNG. Clients request pages in
// increasing order, revealing each as it arrives.
func (s *Server) handlePage(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("page"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a non-negative integer"})
		return
	}

	page, err := s.docs.RenderPage(sess, index)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("X-Page-Index", strconv.Itoa(page.Index))
	c.Data(http.StatusOK, "image/png", page.PNG)
}

// handlePrint serves the stamped buffer inline, the way the browser shell
// feeds its hidden print frame.
func (s *Server) handlePrint(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, "application/pdf", sess.Buffer)
}

// handleDownload serves the stamped buffer as an attachment with the derived
// filename.
func (s *Server) handleDownload(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+sess.DownloadFilename()+`"`)
	c.Data(http.StatusOK, "application/pdf", sess.Buffer)
}

// handleCloseDocument releases the session when the user leaves the
// document view.
func (s *Server) handleCloseDocument(c *gin.Context) {
	s.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) session(c *gin.Context) (*document.Session, bool) {
	sess := s.sessions.Get(c.Param("id"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown document session"})
		return nil, false
	}
	return sess, true
}

// writeError maps pipeline errors onto HTTP statuses and user-facing
// messages.
func (s *Server) writeError(c *gin.Context, err error) {
	var netErr *relay.NetworkError
	if errors.As(err, &netErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error fetching results: " + netErr.Error(), "kind": "network"})
		return
	}

	var malformed *document.MalformedDocumentError
	if errors.As(err, &malformed) {
		kind := "invalid_pdf"
		if malformed.Kind == document.KindSourceErrorPage {
			kind = "source_error_page"
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": malformed.Error(), "kind": kind})
		return
	}

	var renderErr *document.RenderError
	if errors.As(err, &renderErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error loading PDF. Please try again.",
			"kind":  "render",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
