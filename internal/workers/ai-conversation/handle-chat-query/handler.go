// internal/workers/ai-conversation/handle-chat-query/handler.go
package handlechatquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"provider-directory/internal/catalog"
	apperrors "provider-directory/internal/common/errors"
	"provider-directory/internal/common/logger"
	"provider-directory/internal/common/metrics"
	"provider-directory/internal/models"
	parseuserintent "provider-directory/internal/workers/ai-conversation/parse-user-intent"
	queryinternaldata "provider-directory/internal/workers/ai-conversation/query-internal-data"
	buildresponse "provider-directory/internal/workers/infrastructure/build-response"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"
)

const TaskType = "handle-chat-query"

var (
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
)

type Handler struct {
	config       *Config
	store        catalog.Store
	parser       *parseuserintent.Handler
	dispatcher   *queryinternaldata.Handler
	composer     *buildresponse.Handler
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store catalog.Store, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		store:        store,
		parser:       parseuserintent.NewHandler(config.Parser, &parseUserIntentLoggerAdapter{log}),
		dispatcher:   queryinternaldata.NewHandler(config.Dispatcher, store, &queryInternalDataLoggerAdapter{log}),
		composer:     buildresponse.NewHandler(config.Composer, log),
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job,
			apperrors.NewInvalidChatRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.JobTimeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}
	if output.Degraded {
		h.errorHandler.HandleJobError(ctx, client, job, output.failure)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// execute never fails on store errors: they are logged, counted and turned
// into an apology reply marked Degraded.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		h.observe(models.IntentUnknown, start)
		return &Output{Reply: buildresponse.NotUnderstood(), Intent: models.IntentUnknown}, nil
	}

	if intent, ok := parseuserintent.ClassifyCanned(query); ok {
		return h.canned(ctx, intent, start), nil
	}

	catalogs, err := h.loadCatalogs(ctx)
	if err != nil {
		return h.degraded(models.IntentUnknown, apperrors.NewCatalogReadFailedError(err), start), nil
	}

	parsed, err := h.parser.Execute(ctx, &parseuserintent.Input{Query: query, Catalogs: *catalogs})
	if err != nil {
		return h.degraded(models.IntentUnknown, apperrors.AsStandardError(err), start), nil
	}
	u := parsed.Understanding

	dispatched, err := h.dispatcher.Execute(ctx, &queryinternaldata.Input{Understanding: u, Catalogs: *catalogs})
	if err != nil {
		return h.degraded(u.Intent, apperrors.NewSearchFailedError(err), start), nil
	}

	composed, err := h.composer.Execute(ctx, &buildresponse.Input{
		Understanding: u,
		Result:        dispatched,
		Catalogs:      *catalogs,
	})
	if err != nil {
		return h.degraded(u.Intent, apperrors.NewResponseBuildError(err), start), nil
	}

	duration := h.observe(u.Intent, start)
	h.logger.Info("chat query handled", map[string]interface{}{
		"intent":          u.Intent,
		"district":        u.Entities.District,
		"serviceType":     u.Entities.ServiceType,
		"beneficiaryType": u.Entities.BeneficiaryType,
		"providerName":    u.Entities.ProviderName,
		"resultKind":      dispatched.Kind,
		"resultCount":     len(composed.Reply.Results),
		"durationMs":      duration.Milliseconds(),
	})

	return &Output{Reply: composed.Reply, Intent: u.Intent}, nil
}

// canned answers greeting and help without touching the store.
func (h *Handler) canned(ctx context.Context, intent models.Intent, start time.Time) *Output {
	composed, err := h.composer.Execute(ctx, &buildresponse.Input{
		Understanding: models.Understanding{Intent: intent},
		Result:        &queryinternaldata.Output{Kind: queryinternaldata.KindCanned},
	})
	if err != nil {
		return h.degraded(intent, apperrors.NewResponseBuildError(err), start)
	}

	duration := h.observe(intent, start)
	h.logger.Info("chat query handled", map[string]interface{}{
		"intent":      intent,
		"resultKind":  queryinternaldata.KindCanned,
		"resultCount": 0,
		"durationMs":  duration.Milliseconds(),
	})
	return &Output{Reply: composed.Reply, Intent: intent}
}

// loadCatalogs reads the four catalogs concurrently. The first failure
// cancels the remaining reads.
func (h *Handler) loadCatalogs(ctx context.Context) (*models.Catalogs, error) {
	if h.config.CatalogTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.CatalogTimeout)
		defer cancel()
	}

	var c models.Catalogs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Organizations, err = h.store.ListOrganizations(gctx)
		return err
	})
	g.Go(func() (err error) {
		c.Districts, err = h.store.ListDistricts(gctx)
		return err
	})
	g.Go(func() (err error) {
		c.ServiceTypes, err = h.store.ListServiceTypes(gctx)
		return err
	})
	g.Go(func() (err error) {
		c.BeneficiaryTypes, err = h.store.ListBeneficiaryTypes(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return &c, nil
}

func (h *Handler) degraded(intent models.Intent, stdErr *apperrors.StandardError, start time.Time) *Output {
	h.observe(intent, start)
	metrics.ChatQueryFailures.WithLabelValues(string(stdErr.Code)).Inc()
	h.logger.WithError(stdErr).Error("chat query failed", map[string]interface{}{
		"intent":    intent,
		"errorCode": stdErr.Code,
		"details":   stdErr.Details,
	})

	return &Output{
		Reply:     buildresponse.Apology(),
		Intent:    intent,
		Degraded:  true,
		ErrorCode: string(stdErr.Code),
		failure:   stdErr,
	}
}

func (h *Handler) observe(intent models.Intent, start time.Time) time.Duration {
	elapsed := time.Since(start)
	metrics.ChatQueriesTotal.WithLabelValues(string(intent)).Inc()
	metrics.ChatQueryDuration.WithLabelValues(string(intent)).Observe(elapsed.Seconds())
	return elapsed
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// HandleChatQuery answers one free-text query. It always returns a Reply.
func (h *Handler) HandleChatQuery(ctx context.Context, query string) models.Reply {
	output, err := h.execute(ctx, &Input{Query: query})
	if err != nil {
		return buildresponse.Apology()
	}
	return output.Reply
}

// Explain returns the Understanding a query resolves to against the
// current catalogs, without dispatching it.
func (h *Handler) Explain(ctx context.Context, query string) (*models.Understanding, error) {
	catalogs, err := h.loadCatalogs(ctx)
	if err != nil {
		return nil, err
	}
	parsed, err := h.parser.Execute(ctx, &parseuserintent.Input{Query: query, Catalogs: *catalogs})
	if err != nil {
		return nil, err
	}
	return &parsed.Understanding, nil
}
