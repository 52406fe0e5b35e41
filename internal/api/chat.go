package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "provider-directory/internal/common/errors"
	"provider-directory/internal/common/logger"
	"provider-directory/internal/common/validation"
	handlechatquery "provider-directory/internal/workers/ai-conversation/handle-chat-query"
	buildresponse "provider-directory/internal/workers/infrastructure/build-response"
)

// ChatService answers one chat request.
type ChatService interface {
	Execute(ctx context.Context, input *handlechatquery.Input) (*handlechatquery.Output, error)
}

type ChatHandler struct {
	service   ChatService
	validator *validation.ChatRequestValidator
	logger    logger.Logger
}

func NewChatHandler(service ChatService, validator *validation.ChatRequestValidator, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		service:   service,
		validator: validator,
		logger:    log.WithFields(map[string]interface{}{"component": "chat-api"}),
	}
}

// Chat serves POST /api/chat. Malformed bodies get the canned "didn't
// understand" reply with 200; a degraded reply is sent with 503.
func (h *ChatHandler) Chat(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	log := h.logger.WithFields(map[string]interface{}{"requestId": RequestIDFrom(c)})

	result, err := h.validator.Validate(body)
	if err != nil || !result.Valid {
		var detail string
		if err != nil {
			detail = err.Error()
		} else {
			detail = strings.Join(result.GetErrorMessages(), "; ")
		}
		stdErr := apperrors.NewInvalidChatRequestError(detail)
		log.Debug("chat request rejected", map[string]interface{}{
			"code":    stdErr.Code,
			"details": stdErr.Details,
		})
		c.JSON(http.StatusOK, buildresponse.NotUnderstood())
		return
	}

	var input handlechatquery.Input
	if err := json.Unmarshal(body, &input); err != nil {
		c.JSON(http.StatusOK, buildresponse.NotUnderstood())
		return
	}

	output, err := h.service.Execute(c.Request.Context(), &input)
	if err != nil {
		log.WithError(err).Error("chat query failed", nil)
		c.JSON(http.StatusInternalServerError, buildresponse.Apology())
		return
	}

	if output.Degraded {
		c.JSON(http.StatusServiceUnavailable, output.Reply)
		return
	}
	c.JSON(http.StatusOK, output.Reply)
}
