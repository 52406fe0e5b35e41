package parseuserintent

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	TaskType = "parse-user-intent"
)

var (
	ErrEmptyQuery = errors.New("EMPTY_QUERY")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := truncateRunes(strings.TrimSpace(input.Query), h.config.MaxQueryLength)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	entities := Extract(query, &input.Catalogs)
	understanding := Classify(query, entities)

	h.logger.Info("intent parsed", map[string]interface{}{
		"intent":           understanding.Intent,
		"district":         understanding.Entities.District,
		"serviceType":      understanding.Entities.ServiceType,
		"beneficiaryType":  understanding.Entities.BeneficiaryType,
		"providerName":     understanding.Entities.ProviderName,
		"providerResolved": understanding.Entities.ProviderResolved,
	})

	return &Output{Understanding: understanding}, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
