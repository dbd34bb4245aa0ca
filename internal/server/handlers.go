// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	stderrors "gendra-backend/internal/common/errors"
	"gendra-backend/internal/industry"
	"gendra-backend/internal/notify"
	"gendra-backend/internal/pricing"
	"gendra-backend/internal/rfq"
	"gendra-backend/internal/rfq/extract"
	"gendra-backend/internal/storage"
)

// Lead estimates quoted to the customer on submission.
const (
	rushLeadEstimate     = "5-7 business days"
	standardLeadEstimate = "10-14 business days"
)

type parseRequest struct {
	Text              string `json:"text"`
	UserID            string `json:"userId,omitempty"`
	PreferredIndustry string `json:"preferredIndustry,omitempty"`
}

type parseUploadRequest struct {
	Text              string `json:"text"`
	Filename          string `json:"filename,omitempty"`
	FileType          string `json:"fileType,omitempty"`
	SheetName         string `json:"sheetName,omitempty"`
	UserID            string `json:"userId,omitempty"`
	PreferredIndustry string `json:"preferredIndustry,omitempty"`
}

type parseResponse struct {
	DraftID        string             `json:"draftId,omitempty"`
	Record         rfq.StructuredRFQ  `json:"record"`
	Classification rfq.Classification `json:"classification"`
	Issues         []rfq.FieldIssue   `json:"issues,omitempty"`
	ModelUsed      string             `json:"modelUsed"`
}

type submitQuoteRequest struct {
	DraftID      string          `json:"draftId,omitempty"`
	IndustryID   string          `json:"industryId"`
	Material     string          `json:"material"`
	Quantity     int             `json:"quantity"`
	Complexity   string          `json:"complexity"`
	Dimensions   *rfq.Dimensions `json:"dimensions,omitempty"`
	Rush         bool            `json:"rush,omitempty"`
	ContactEmail string          `json:"contactEmail,omitempty"`
	ContactPhone string          `json:"contactPhone,omitempty"`
}

type quoteRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type submitQuoteResponse struct {
	SubmissionID string              `json:"submissionId,omitempty"`
	Quote        pricing.QuoteResult `json:"quote"`
	QuoteRange   quoteRange          `json:"quoteRange"`
	LeadEstimate string              `json:"leadEstimate"`
}

type industriesResponse struct {
	Industries []industry.Config `json:"industries"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// ==========================
// Parsing
// ==========================

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.runExtraction(w, r, &extract.Input{
		Text: req.Text,
		UserContext: &extract.UserContext{
			UserID:            req.UserID,
			PreferredIndustry: req.PreferredIndustry,
		},
	})
}

func (s *Server) handleParseUpload(w http.ResponseWriter, r *http.Request) {
	var req parseUploadRequest
	if !s.decode(w, r, &req) {
		return
	}

	// Extracted document text below this length is a fragment, not an RFQ.
	if len(strings.TrimSpace(req.Text)) < s.cfg.Extraction.MinUploadLength {
		s.writeError(w, stderrors.NewValidationFailedError(
			"uploaded document text is too short to parse"))
		return
	}

	s.runExtraction(w, r, &extract.Input{
		Text: req.Text,
		FileContext: &extract.FileContext{
			Filename:  req.Filename,
			FileType:  req.FileType,
			SheetName: req.SheetName,
		},
		UserContext: &extract.UserContext{
			UserID:            req.UserID,
			PreferredIndustry: req.PreferredIndustry,
		},
	})
}

func (s *Server) runExtraction(w http.ResponseWriter, r *http.Request, input *extract.Input) {
	result, err := s.extractor.Extract(r.Context(), input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := parseResponse{
		Record:         result.Record,
		Classification: result.Classification,
		Issues:         result.Issues,
		ModelUsed:      result.ModelUsed,
	}

	if s.drafts != nil {
		userID := ""
		if input.UserContext != nil {
			userID = input.UserContext.UserID
		}
		draft, err := s.drafts.Save(r.Context(), storage.Draft{
			UserID:         userID,
			Record:         result.Record,
			SourceText:     input.Text,
			Classification: string(result.Classification),
			ModelUsed:      result.ModelUsed,
		})
		if err != nil {
			// The parse result is still good; losing the draft only costs
			// the caller a re-parse on submission.
			s.logger.Warn("failed to persist draft", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			resp.DraftID = draft.ID
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// ==========================
// Drafts
// ==========================

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		s.writeError(w, stderrors.NewDraftNotFoundError(chi.URLParam(r, "draftID")))
		return
	}

	draft, err := s.drafts.Get(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleReviewDraft(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftID")
	if s.drafts == nil {
		s.writeError(w, stderrors.NewDraftNotFoundError(draftID))
		return
	}

	if err := s.drafts.MarkReviewed(r.Context(), draftID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"draftId":  draftID,
		"reviewed": true,
	})
}

// ==========================
// Quoting
// ==========================

func (s *Server) handleSubmitQuote(w http.ResponseWriter, r *http.Request) {
	var req submitQuoteRequest
	if !s.decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.IndustryID) == "" {
		s.writeError(w, stderrors.NewValidationFailedError("industryId is required"))
		return
	}
	if req.Quantity < 0 {
		s.writeError(w, stderrors.NewValidationFailedError("quantity must not be negative"))
		return
	}
	if req.ContactEmail != "" && !strings.Contains(req.ContactEmail, "@") {
		s.writeError(w, stderrors.NewValidationFailedError("contactEmail is not a valid address"))
		return
	}

	result := s.resolver.Resolve(r.Context(), pricing.QuoteRequest{
		IndustryID: req.IndustryID,
		Material:   req.Material,
		Quantity:   req.Quantity,
		Complexity: req.Complexity,
		Dimensions: req.Dimensions,
	})

	low := round2(result.Quote * 0.9)
	high := round2(result.Quote * 1.1)
	leadEstimate := standardLeadEstimate
	if req.Rush {
		leadEstimate = rushLeadEstimate
	}

	resp := submitQuoteResponse{
		Quote:        result,
		QuoteRange:   quoteRange{Low: low, High: high},
		LeadEstimate: leadEstimate,
	}

	if s.submissions != nil {
		sub, err := s.submissions.Save(r.Context(), storage.Submission{
			DraftID:      req.DraftID,
			IndustryID:   req.IndustryID,
			Material:     req.Material,
			Quantity:     req.Quantity,
			Complexity:   req.Complexity,
			Quote:        result.Quote,
			QuoteLow:     low,
			QuoteHigh:    high,
			CalculatedBy: result.CalculatedBy,
			LeadEstimate: leadEstimate,
			ContactEmail: req.ContactEmail,
			ContactPhone: req.ContactPhone,
		})
		if err != nil {
			// The customer already has a resolved quote; do not fail the
			// request over bookkeeping.
			s.logger.Warn("failed to persist submission", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			resp.SubmissionID = sub.ID
		}
	}

	if s.notifier != nil && (req.ContactEmail != "" || req.ContactPhone != "") {
		industryName := req.IndustryID
		if cfg, ok := industry.Get(req.IndustryID); ok {
			industryName = cfg.Name
		}
		notification := notify.QuoteNotification{
			SubmissionID: resp.SubmissionID,
			IndustryName: industryName,
			QuoteLow:     low,
			QuoteHigh:    high,
			LeadEstimate: leadEstimate,
			Email:        req.ContactEmail,
			Phone:        req.ContactPhone,
		}
		go s.notifier.QuoteSubmitted(context.WithoutCancel(r.Context()), notification)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// ==========================
// Industry configuration
// ==========================

func (s *Server) handleIndustries(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, industriesResponse{Industries: industry.List()})
}

func (s *Server) handleQuoteConfig(w http.ResponseWriter, r *http.Request) {
	industryID := chi.URLParam(r, "industryID")
	cfg, ok := industry.Get(industryID)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{
			Code:    "INDUSTRY_NOT_FOUND",
			Message: "Unknown industry",
			Details: industryID,
		}})
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

// ==========================
// Health
// ==========================

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.healthcheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.healthcheck(ctx); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ==========================
// Helpers
// ==========================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, stderrors.NewValidationFailedError("request body is not valid JSON"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		s.writeJSON(w, stderrors.HTTPStatus(stdErr.Code), errorResponse{Error: errorBody{
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
			Details: stdErr.Details,
		}})
		return
	}

	s.logger.Error("unhandled error", map[string]interface{}{
		"error": err.Error(),
	})
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	}})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
