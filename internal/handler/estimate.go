package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/cleberrangel/quickquote-api/internal/metrics"
	"github.com/cleberrangel/quickquote-api/internal/middleware"
	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/cleberrangel/quickquote-api/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	// HeaderEstimateID carries the generated estimate id
	HeaderEstimateID = "X-Estimate-ID"
	// HeaderGrandTotal carries the grand total rounded to cents
	HeaderGrandTotal = "X-Grand-Total"
)

// EstimateHandler handles the form, submissions and re-downloads
type EstimateHandler struct {
	estimateService *service.EstimateService
	maxUploadBytes  int64
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(estimateService *service.EstimateService, maxUploadBytes int64) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Form renders the estimate form
// @Summary      Estimate form
// @Tags         estimates
// @Produce      html
// @Router       / [get]
func (h *EstimateHandler) Form(c *gin.Context) {
	slots := make([]int, h.estimateService.Capacity())
	for i := range slots {
		slots[i] = i + 1
	}
	c.HTML(http.StatusOK, "form.html", gin.H{
		"Slots": slots,
	})
}

// Submit generates an estimate and returns it as an attachment
// @Summary      Generate estimate
// @Description  Parses the form, computes totals and returns the PDF (or XLSX) document
// @Tags         estimates
// @Accept       multipart/form-data
// @Produce      application/pdf
// @Success      200 {file} binary "Estimate document"
// @Failure      400 {object} model.ErrorResponse
// @Failure      413 {object} model.ErrorResponse
// @Failure      429 {object} model.ErrorResponse
// @Failure      500 {object} model.ErrorResponse
// @Router       /submit [post]
func (h *EstimateHandler) Submit(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := bindEstimateForm(c, h.estimateService.Capacity(), h.maxUploadBytes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if len(form.SignatureImage) > 0 {
		metrics.Get().IncrementFileUpload(int64(len(form.SignatureImage)))
	}

	out, err := h.estimateService.Generate(c.Request.Context(), form)
	if err != nil {
		h.handleError(c, err)
		return
	}

	log.Info().
		Str("estimate_id", out.EstimateID).
		Str("format", string(out.Format)).
		Int64("size", out.Size).
		Msg("Documento enviado")

	c.Header(HeaderEstimateID, out.EstimateID)
	c.Header(HeaderGrandTotal, out.Result.GrandTotal.StringFixed(2))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", out.FileName))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// Download returns a stored document while it is retained
// @Summary      Download estimate
// @Tags         estimates
// @Produce      application/pdf
// @Param        id path string true "Estimate ID"
// @Success      200 {file} binary "Estimate document"
// @Failure      400 {object} model.ErrorResponse
// @Failure      404 {object} model.ErrorResponse
// @Router       /estimates/{id}/download [get]
func (h *EstimateHandler) Download(c *gin.Context) {
	id := c.Param("id")
	if !middleware.ValidateEstimateID(id) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "identificador inválido",
			Details: "o identificador tem 8 caracteres hexadecimais",
		})
		return
	}

	ctx := logger.WithEstimateID(c.Request.Context(), id)
	doc, err := h.estimateService.OpenDocument(id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer doc.Close()

	metrics.Get().IncrementDownload()
	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionEstimateDownload,
		Resource: "estimate",
		ClientIP: c.ClientIP(),
		Success:  true,
		Details:  map[string]interface{}{"file": doc.Name, "bytes": doc.Size},
	})

	c.Header(HeaderEstimateID, id)
	c.DataFromReader(http.StatusOK, doc.Size, doc.ContentType, doc.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%s", doc.Name),
	})
}

// handleError maps service errors to HTTP responses
func (h *EstimateHandler) handleError(c *gin.Context, err error) {
	log := logger.FromGin(c)

	switch {
	case errors.Is(err, model.ErrUploadTooLarge):
		log.Warn().Err(err).Msg("Upload acima do limite")
		c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
			Success: false,
			Error:   "upload muito grande",
			Details: fmt.Sprintf("o limite é %dMB", h.maxUploadBytes>>20),
		})
	case model.IsInputError(err):
		log.Warn().Err(err).Msg("Formulário inválido")
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "dados do formulário inválidos",
			Details: err.Error(),
		})
	case errors.Is(err, model.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Error:   "documento não encontrado",
			Details: "o documento expirou ou nunca existiu",
		})
	default:
		log.Error().Err(err).Msg("Erro ao processar orçamento")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "erro interno",
			Details: err.Error(),
		})
	}
}
