package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/farm-dashboard/internal/apperror"
	"github.com/example/farm-dashboard/internal/logging"
)

// writeError logs err once and answers with the standard error envelope.
func writeError(c *gin.Context, logger *zap.Logger, operation string, err error) {
	resp := apperror.Resolve(err)
	opLogger := logging.WithOperation(logger, operation, logging.RequestIDFromContext(c.Request.Context()))
	fields := []zap.Field{
		zap.String("code", string(resp.Error)),
		zap.Int("status", resp.Status),
		zap.Error(err),
	}
	if resp.Status >= 500 {
		opLogger.Error("request failed", fields...)
	} else {
		opLogger.Warn("request rejected", fields...)
	}
	c.AbortWithStatusJSON(resp.Status, resp)
}

func unauthenticated() error {
	return apperror.New(apperror.CodeUnauthorized, apperror.Params{}, errors.New("no principal in context"))
}

func exportFailed(err error) error {
	return apperror.New(apperror.CodeExportFailed, apperror.Params{Resource: "dashboardReport"}, err)
}
