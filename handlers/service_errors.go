package handlers

import (
	"net/http"

	"github.com/upb/llm-gateway/services"
	"github.com/upb/llm-gateway/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses with a
// machine-readable reason code. Rejections carry the specific reason so
// callers can distinguish route_not_found, model_not_allowed, and
// cost_cap_exceeded.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	switch {
	case services.IsNotFoundError(err):
		if werr := utils.WriteError(w, http.StatusNotFound, "route_not_found", err.Error(), details); werr != nil {
			logger.Error("failed to write not found response", zap.Error(werr))
		}

	case services.IsValidationError(err):
		if werr := utils.WriteBadRequest(w, err.Error(), details); werr != nil {
			logger.Error("failed to write bad request response", zap.Error(werr))
		}

	case services.IsPolicyViolationError(err):
		if werr := utils.WriteError(w, http.StatusForbidden, "model_not_allowed", err.Error(), details); werr != nil {
			logger.Error("failed to write policy violation response", zap.Error(werr))
		}

	case services.IsBudgetError(err):
		// Cost-cap and budget rejections are mapped to 402 Payment Required
		if werr := utils.WriteError(w, http.StatusPaymentRequired, "cost_cap_exceeded", err.Error(), details); werr != nil {
			logger.Error("failed to write budget error response", zap.Error(werr))
		}

	case services.IsExternalError(err):
		if werr := utils.WriteError(w, http.StatusBadGateway, "bad_gateway", err.Error(), details); werr != nil {
			logger.Error("failed to write bad gateway response", zap.Error(werr))
		}

	default:
		// Log internal errors but return a generic message
		logger.Error("internal server error", zap.Error(err))
		if werr := utils.WriteInternalServerError(w, "An internal error occurred"); werr != nil {
			logger.Error("failed to write internal error response", zap.Error(werr))
		}
	}
}
