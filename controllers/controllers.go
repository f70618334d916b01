package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Habib-0007/habsblog-api/services"
	"github.com/Habib-0007/habsblog-api/utils"
)

// statusFor maps a service failure to its HTTP status.
func statusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the envelope for a service error. Internal causes are logged,
// never surfaced.
func fail(ctx *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError && utils.Sugar != nil {
		utils.Sugar.Errorw("request failed",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"error", err,
		)
	}
	utils.Fail(ctx, status, err.Error())
}

// parsePagination reads page/limit query values, leaving range clamping to
// the service layer.
func parsePagination(ctx *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	return page, limit
}

// parseID reads a numeric path parameter.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Fail(ctx, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
