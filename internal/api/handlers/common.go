package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditlens/auditlens/internal/utils"
)

type APIError struct {
	Error   string     `json:"error"`
	Code    utils.Code `json:"code"`
	Details string     `json:"details,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		resp := APIError{Error: ae.Message, Code: ae.Code}
		if ae.Err != nil {
			resp.Details = ae.Err.Error()
		}
		c.JSON(status, resp)
		return
	}

	c.JSON(status, APIError{
		Error: http.StatusText(status),
		Code:  utils.CodeInternal,
	})
}
