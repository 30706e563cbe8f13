package middleware

import (
	"errors"
	apiError "innovation-portal/internal/errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		if len(c.Errors) == 0 {
			return
		}

		apiErr := toAPIError(c.Errors.Last().Err)

		if apiErr.Status >= 500 {
			log.Error().Err(apiErr.Internal).Str("path", c.FullPath()).Msg(apiErr.Message)
		} else {
			log.Info().Err(apiErr.Internal).Int("status", apiErr.Status).Msg(apiErr.Message)
		}

		c.AbortWithStatusJSON(apiErr.Status, apiErr)
	}
}

func toAPIError(err error) *apiError.APIError {
	var apiErr *apiError.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var numErr *strconv.NumError
	switch {
	case errors.As(err, &numErr):
		// malformed path ids never match a record
		return apiError.NotFound("Resource not found", err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apiError.NotFound("Resource not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apiError.Conflict("Resource already exists", err)
	}

	return apiError.Internal(err)
}
