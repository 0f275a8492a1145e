package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/meter-codec/internal/api/middleware"
	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
	"github.com/taoyao-code/meter-codec/internal/protocol/commands"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
	"github.com/taoyao-code/meter-codec/internal/service"
)

// StandardResponse 标准响应格式
type StandardResponse struct {
	Code      int         `json:"code"`           // 0=成功, >0=错误码
	Message   string      `json:"message"`        // 消息
	Data      interface{} `json:"data,omitempty"` // 业务数据
	RequestID string      `json:"request_id"`     // 请求追踪ID
	Timestamp int64       `json:"timestamp"`      // 时间戳
}

// classifyError 参数错误 400，报文无法按协议处理 422，其余 500
func classifyError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, buffer.ErrOutOfRange),
		errors.Is(err, message.ErrEmptyMessage),
		errors.Is(err, message.ErrMandatoryContextMissing),
		errors.Is(err, message.ErrUnknownCommand),
		errors.Is(err, message.ErrNoEncoder),
		errors.Is(err, message.ErrCommandIDRange),
		errors.Is(err, message.ErrBodyTooLarge),
		errors.Is(err, message.ErrKeyRequired),
		errors.Is(err, message.ErrBadBlockSize),
		errors.Is(err, message.ErrAccessLevel),
		errors.Is(err, message.ErrDirection),
		errors.Is(err, commands.ErrParams),
		errors.Is(err, commands.ErrUnknownFlag):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, StandardResponse{
		Code:      0,
		Message:   "success",
		Data:      data,
		RequestID: middleware.RequestID(c),
		Timestamp: time.Now().Unix(),
	})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, StandardResponse{
		Code:      status,
		Message:   msg,
		RequestID: middleware.RequestID(c),
		Timestamp: time.Now().Unix(),
	})
}
