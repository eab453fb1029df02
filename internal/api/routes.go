// Package api exposes the processing pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/civilex/internal/models"
	"github.com/Lllllllleong/civilex/internal/services"
)

// UploadGateway issues upload destinations.
type UploadGateway interface {
	RequestUploadDestination(ctx context.Context, filename string) (models.UploadTarget, error)
}

// Pipeline processes uploaded documents and answers questions about them.
type Pipeline interface {
	Process(ctx context.Context, filename string) (models.ProcessResult, error)
	Answer(ctx context.Context, docText, question string) (models.AnswerResult, error)
}

type API struct {
	mode     services.Mode
	gateway  UploadGateway
	pipeline Pipeline
}

func NewAPI(mode services.Mode, gateway UploadGateway, pipeline Pipeline) *API {
	return &API{mode: mode, gateway: gateway, pipeline: pipeline}
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/health", api.handleHealth)
	r.GET("/schema", api.handleSchema)
	r.POST("/upload-url", api.handleUploadURL)
	r.POST("/process", api.handleProcess)
	r.POST("/qa", api.handleQA)
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{OK: true, UseMock: a.mode.IsMock()})
}

func (a *API) handleSchema(c *gin.Context) {
	c.JSON(http.StatusOK, models.ExampleProcessResult())
}

func (a *API) handleUploadURL(c *gin.Context) {
	filename := c.Query("filename")
	target, err := a.gateway.RequestUploadDestination(c.Request.Context(), filename)
	if err != nil {
		respondPipelineError(c, "Signed URL error: ", err)
		return
	}
	c.JSON(http.StatusOK, target)
}

func (a *API) handleProcess(c *gin.Context) {
	var req models.ProcessRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := a.pipeline.Process(c.Request.Context(), req.Filename)
	if err != nil {
		respondPipelineError(c, "Processing error: ", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) handleQA(c *gin.Context) {
	var req models.QARequest
	if !bindJSON(c, &req) {
		return
	}

	answer, err := a.pipeline.Answer(c.Request.Context(), req.DocumentText, req.Question)
	if err != nil {
		respondPipelineError(c, "Processing error: ", err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondMessage(c, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		respondError(c, http.StatusBadRequest, err)
		return false
	}
	return true
}

// respondPipelineError maps the pipeline's error kinds to status codes.
func respondPipelineError(c *gin.Context, prefix string, err error) {
	if errors.Is(err, services.ErrInvalidInput) {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	requestLogger(c).Error("Request failed", "route", c.FullPath(), "error", err)
	respondMessage(c, http.StatusInternalServerError, prefix+err.Error())
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: message})
}
