package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditlens/auditlens/internal/models"
	"github.com/auditlens/auditlens/internal/services"
	"github.com/auditlens/auditlens/internal/utils"
)

type AnalysisHandler struct {
	svc services.AnalysisService
}

func NewAnalysisHandler(svc services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

type mediaItemRequest struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"` // base64
	Comment  string `json:"comment"`
}

type analyzeMediaRequest struct {
	Media             []mediaItemRequest `json:"media"`
	SystemInstruction string             `json:"systemInstruction"`
	ResponseSchema    map[string]any     `json:"responseSchema"`
}

type analyzeMediaResponse struct {
	Text     string         `json:"text"` // full AggregateResult as a JSON string
	Metadata map[string]any `json:"metadata"`
	Issues   []models.Issue `json:"issues"`
}

func (h *AnalysisHandler) AnalyzeMedia(c *gin.Context) {
	const op = "AnalysisHandler.AnalyzeMedia"

	var req analyzeMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}
	if len(req.Media) == 0 {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "media is required", nil))
		return
	}

	media := make([]models.MediaItem, 0, len(req.Media))
	for _, m := range req.Media {
		kind, ok := models.ParseMediaKind(m.Kind)
		if !ok {
			kind, ok = models.ParseMediaKind(m.MimeType)
		}
		if !ok {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "unsupported media kind: "+m.Kind, nil))
			return
		}
		media = append(media, models.MediaItem{
			ID:       m.ID,
			Kind:     kind,
			MimeType: m.MimeType,
			Data:     m.Data,
			Comment:  m.Comment,
		})
	}

	result, err := h.svc.Analyze(c.Request.Context(), models.AnalysisRequest{
		Media:             media,
		SystemInstruction: req.SystemInstruction,
		ResponseSchema:    req.ResponseSchema,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	text, err := json.Marshal(result)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to encode result", err))
		return
	}

	c.JSON(http.StatusOK, analyzeMediaResponse{
		Text: string(text),
		Metadata: map[string]any{
			"model":           result.Model,
			"usage":           result.Usage,
			"cost_usd":        result.CostUSD,
			"timeline":        result.Timeline,
			"items_submitted": result.ItemsSubmitted,
			"items_failed":    result.ItemsFailed,
		},
		Issues: result.Issues,
	})
}
