package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"handscore/internal/middleware"
	"handscore/internal/service"
	"handscore/internal/service/score"
	"handscore/internal/ws"
	appErr "handscore/pkg/errors"
	"handscore/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Score)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/handScore/v1")
	{
		v1.POST("/score", handler.Score)
		v1.GET("/runs/:code", handler.GetRun)
	}

	adminGroup := r.Group("/admin")
	{
		adminGroup.POST("/auth/login", handler.AdminLogin)

		protected := adminGroup.Group("/")
		protected.Use(middleware.AdminAuthRequired(services.Admin.Signer()))
		{
			protected.GET("/runs", handler.AdminListRuns)
		}
	}

	r.GET("/ws/score", wsHandler.HandleScoreWS)
}

type scoreBody struct {
	Input   string `json:"input" binding:"required"`
	Variant string `json:"variant"`
	Persist bool   `json:"persist"`
}

type adminLoginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Score(c *gin.Context) {
	var body scoreBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Score.Score(c.Request.Context(), score.Request{
		Input:   body.Input,
		Variant: strings.TrimSpace(body.Variant),
		Persist: body.Persist,
	})
	if err != nil {
		response.Error(c, scoreErrorStatus(err), err.Error())
		return
	}

	response.Success(c, result)
}

func (h *Handler) GetRun(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		response.Error(c, http.StatusBadRequest, "invalid run code")
		return
	}

	run, err := h.services.Score.GetRun(c.Request.Context(), code)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}

	response.Success(c, run)
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var body adminLoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Admin.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrAdminNotFound), errors.Is(err, appErr.ErrInvalidAdminPassword):
			// same answer for both so usernames cannot be enumerated
			response.Error(c, http.StatusUnauthorized, appErr.ErrInvalidAdminPassword.Error())
			return
		case errors.Is(err, appErr.ErrAdminDisabled):
			status = http.StatusForbidden
		}
		response.Error(c, status, err.Error())
		return
	}

	response.Success(c, result)
}

func (h *Handler) AdminListRuns(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	size, err := parsePositiveIntQuery(c, "size", 20)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Score.ListRuns(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Success(c, gin.H{
		"items": result.Items,
		"total": result.Total,
		"page":  page,
		"size":  size,
	})
}

func scoreErrorStatus(err error) int {
	switch {
	case errors.Is(err, appErr.ErrInputFormat),
		errors.Is(err, appErr.ErrEmptyInput),
		errors.Is(err, appErr.ErrUnknownVariant):
		return http.StatusBadRequest
	case errors.Is(err, appErr.ErrTooManyHands):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func parsePositiveIntQuery(c *gin.Context, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return parsed, nil
}
