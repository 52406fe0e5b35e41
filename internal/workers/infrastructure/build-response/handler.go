// internal/workers/infrastructure/build-response/handler.go
package buildresponse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"provider-directory/internal/common/logger"
	"provider-directory/internal/models"
	queryinternaldata "provider-directory/internal/workers/ai-conversation/query-internal-data"
)

const TaskType = "build-response"

var (
	ErrMissingResult     = errors.New("MISSING_DISPATCH_RESULT")
	ErrUnknownResultKind = errors.New("UNKNOWN_RESULT_KIND")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.Result == nil {
		return nil, ErrMissingResult
	}

	var reply models.Reply
	result := input.Result
	cat := &input.Catalogs

	switch result.Kind {
	case queryinternaldata.KindCanned:
		reply = h.composeCanned(input.Understanding.Intent)
	case queryinternaldata.KindNeedSpecificity:
		reply = models.Reply{
			Response: needSpecificityMessage,
			Suggestions: h.suggestions(
				findProviders(firstName(cat.ServiceTypes), ""),
				findServicesIn(firstName(cat.Districts)),
				findServicesFor(firstName(cat.BeneficiaryTypes), ""),
			),
		}
	case queryinternaldata.KindResults:
		if len(result.Organizations) == 0 {
			reply = h.composeEmpty(result.Filter, cat)
		} else {
			reply = h.composeResults(result.Organizations, result.Filter, cat)
		}
	case queryinternaldata.KindProvider:
		if result.Provider == nil {
			return nil, ErrMissingResult
		}
		reply = h.composeProvider(*result.Provider, input.Understanding.Entities.InformationRequest)
	case queryinternaldata.KindProviderNotFound:
		reply = h.composeNotFound(input.Understanding.Entities.ProviderName, result.Candidates)
	case queryinternaldata.KindCounts:
		if result.Counts == nil {
			return nil, ErrMissingResult
		}
		reply = h.composeCounts(*result.Counts, cat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResultKind, result.Kind)
	}

	if reply.Suggestions == nil {
		reply.Suggestions = []string{}
	}

	h.logger.Debug("response composed", map[string]interface{}{
		"kind":            result.Kind,
		"intent":          input.Understanding.Intent,
		"suggestionCount": len(reply.Suggestions),
		"resultCount":     len(reply.Results),
	})

	return &Output{Reply: reply}, nil
}

func (h *Handler) composeCanned(intent models.Intent) models.Reply {
	switch intent {
	case models.IntentGreeting:
		return models.Reply{Response: greetingMessage, Suggestions: h.suggestions(greetingSuggestions...)}
	case models.IntentHelp:
		return models.Reply{Response: helpMessage, Suggestions: h.suggestions(defaultSuggestions...)}
	default:
		return models.Reply{Response: unknownMessage, Suggestions: h.suggestions(defaultSuggestions...)}
	}
}

// suggestions drops blanks and case-insensitive duplicates, keeps the
// first MaxSuggestions and tops the list up from the defaults.
func (h *Handler) suggestions(candidates ...string) []string {
	max := h.config.MaxSuggestions
	if max <= 0 || max > models.MaxSuggestions {
		max = models.MaxSuggestions
	}

	out := make([]string, 0, max)
	seen := make(map[string]bool, max)
	for _, list := range [][]string{candidates, defaultSuggestions} {
		for _, c := range list {
			if len(out) == max {
				return out
			}
			key := strings.ToLower(strings.TrimSpace(c))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, c)
		}
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
