package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	RequestID string `json:"request_id"`
	Topic     string `json:"topic"`
	Text      string `json:"text"`
	State     string `json:"state"`
	Rows      int    `json:"rows"`
	Delivery  string `json:"delivery"`
}

func newAskResponse(a domain.Answer) askResponse {
	return askResponse{
		RequestID: a.RequestID,
		Topic:     a.Topic.String(),
		Text:      a.Text,
		State:     a.State.String(),
		Rows:      a.Rows,
		Delivery:  a.Delivery.String(),
	}
}

func (s *Server) healthz(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// ask answers one question. Generation failures are 502 with the
// user-facing text so clients can still display it.
func (s *Server) ask(c *echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question required")
	}

	answer, err := s.ports.Assistant.Ask(c.Request().Context(), req.Question)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			return c.JSON(http.StatusBadGateway, newAskResponse(answer))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, newAskResponse(answer))
}

func (s *Server) summary(c *echo.Context) error {
	if s.ports.Dashboard == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "dashboard not configured")
	}
	summary, err := s.ports.Dashboard.Summary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}
