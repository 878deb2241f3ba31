package folio

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/notify"
)

type contactRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=200"`
	Email   string `json:"email" form:"email" validate:"required,email,max=320"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
	Locale  string `json:"locale" form:"locale" validate:"omitempty,oneof=en ru"`
}

type feedbackRequest struct {
	Page    string `json:"page" form:"page" validate:"omitempty,max=2048"`
	Rating  int    `json:"rating" form:"rating" validate:"omitempty,min=1,max=5"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
	Email   string `json:"email" form:"email" validate:"omitempty,email,max=320"`
	Locale  string `json:"locale" form:"locale" validate:"omitempty,oneof=en ru"`
}

type acceptedResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

func (a *App) handleContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{errCodeInvalidRequest})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	return a.relay(c, &req, notify.KindContact, req.Locale, map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"message": req.Message,
	})
}

func (a *App) handleFeedback(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{errCodeInvalidRequest})
	}
	req.Message = strings.TrimSpace(req.Message)
	req.Email = strings.TrimSpace(req.Email)
	fields := map[string]string{
		"page":    req.Page,
		"message": req.Message,
		"email":   req.Email,
	}
	if req.Rating > 0 {
		fields["rating"] = strings.Repeat("★", req.Rating)
	}
	return a.relay(c, &req, notify.KindFeedback, req.Locale, fields)
}

// relay validates req, charges the caller's rate limit and queues the
// message. It answers 202 without waiting for delivery.
func (a *App) relay(c echo.Context, req any, kind, locale string, fields map[string]string) error {
	if err := a.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{errCodeInvalidRequest})
	}
	ip := c.RealIP()
	if !a.formLimiter.Allow(ip) {
		return c.JSON(http.StatusTooManyRequests, apiError{errCodeRateLimited})
	}
	if locale == "" {
		locale = string(NegotiateLocale(c.Request().Header.Get("Accept-Language"), a.Config.DefaultLocale))
	}
	msg := notify.NewMessage(kind, locale, fields)
	a.dispatcher.Dispatch(msg)
	return c.JSON(http.StatusAccepted, acceptedResponse{Status: "accepted", ID: msg.ID})
}
