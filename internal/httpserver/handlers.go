package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/1broseidon/director/models"
	"github.com/1broseidon/director/session"
)

type credentialRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

type sessionResponse struct {
	session.Snapshot
	HasCredential bool `json:"has_credential"`
}

func (s *HttpServer) snapshot() sessionResponse {
	return sessionResponse{
		Snapshot:      s.session.Snapshot(),
		HasCredential: s.client.HasCredential(),
	}
}

func (s *HttpServer) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *HttpServer) getTier(c *gin.Context) {
	ctx, cancel := s.callContext(c)
	defer cancel()
	c.JSON(http.StatusOK, s.client.DetectTier(ctx))
}

func (s *HttpServer) getModels(c *gin.Context) {
	ctx, cancel := s.callContext(c)
	defer cancel()

	ids, err := s.client.Models(ctx)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": ids})
}

func (s *HttpServer) postCredential(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, fmt.Errorf("%w: %v", errBadUpload, err))
		return
	}

	ctx, cancel := s.callContext(c)
	defer cancel()

	if err := s.client.SetCredential(ctx, strings.TrimSpace(req.APIKey)); err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.client.DetectTier(ctx))
}

func (s *HttpServer) postPlan(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, fmt.Errorf("%w: body exceeds %d bytes", errBadUpload, tooLarge.Limit))
			return
		}
		HandleError(c, fmt.Errorf("%w: %v", errBadUpload, err))
		return
	}

	images, err := readReferenceSet(form)
	if err != nil {
		HandleError(c, err)
		return
	}

	ctx, cancel := s.callContext(c)
	defer cancel()

	if _, err := s.session.Submit(ctx, session.Request{
		Text:             c.PostForm("request"),
		AuxiliaryContext: c.PostForm("drive_link"),
		Images:           images,
	}); err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *HttpServer) postConfirm(c *gin.Context) {
	ctx, cancel := s.callContext(c)
	defer cancel()

	if _, err := s.session.Confirm(ctx); err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *HttpServer) postCancel(c *gin.Context) {
	if err := s.session.Cancel(); err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *HttpServer) postReset(c *gin.Context) {
	s.session.Reset()
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *HttpServer) deleteError(c *gin.Context) {
	s.session.DismissError()
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *HttpServer) getResultImage(c *gin.Context) {
	result := s.session.Result()
	if !result.HasImage() {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
			Code:      "not_found",
			Error:     "no generated image available",
			RequestID: GetRequestID(c),
		})
		return
	}

	mimeType, data, err := models.ParseDataURL(result.ImageURL)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="director-output.%s"`, extensionFor(mimeType)))
	c.Data(http.StatusOK, mimeType, data)
}
