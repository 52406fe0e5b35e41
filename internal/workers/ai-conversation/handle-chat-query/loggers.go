// internal/workers/ai-conversation/handle-chat-query/loggers.go
package handlechatquery

import (
	"provider-directory/internal/common/logger"
	parseuserintent "provider-directory/internal/workers/ai-conversation/parse-user-intent"
	queryinternaldata "provider-directory/internal/workers/ai-conversation/query-internal-data"
)

// Logger adapters for the workers that declare their own Logger interface.
type parseUserIntentLoggerAdapter struct {
	logger.Logger
}

func (a *parseUserIntentLoggerAdapter) With(fields map[string]interface{}) parseuserintent.Logger {
	return &parseUserIntentLoggerAdapter{a.Logger.With(fields)}
}

type queryInternalDataLoggerAdapter struct {
	logger.Logger
}

func (a *queryInternalDataLoggerAdapter) With(fields map[string]interface{}) queryinternaldata.Logger {
	return &queryInternalDataLoggerAdapter{a.Logger.With(fields)}
}
