package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/meter-codec/internal/api/middleware"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
	"github.com/taoyao-code/meter-codec/internal/service"
)

// CodecAPI 处理器依赖的编解码操作
type CodecAPI interface {
	DecodeFrame(req service.FrameDecodeRequest) (*service.FrameView, error)
	EncodeFrame(req service.FrameEncodeRequest) (*service.EncodeResult, error)
	ScanFrames(req service.FrameScanRequest) (*service.ScanResult, error)
	DecodeMessage(req service.MessageDecodeRequest) (*service.MessageView, error)
	EncodeMessage(req service.MessageEncodeRequest) (*service.EncodeResult, error)
	Commands(dir message.Direction) []service.CommandInfo
}

// CodecHandler 编解码API处理器
type CodecHandler struct {
	svc    CodecAPI
	logger *zap.Logger
}

// NewCodecHandler 创建编解码API处理器
func NewCodecHandler(svc CodecAPI, logger *zap.Logger) *CodecHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodecHandler{svc: svc, logger: logger}
}

func (h *CodecHandler) fail(c *gin.Context, op string, err error) {
	status := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.String("request_id", middleware.RequestID(c)), zap.Error(err))
	} else {
		h.logger.Debug(op+" rejected", zap.String("request_id", middleware.RequestID(c)), zap.Error(err))
	}
	respondError(c, status, err.Error())
}

// DecodeFrame 解码链路帧
// @Summary 解码链路帧
// @Description 去除首尾标志、反转义并校验 CRC16；可选继续解码帧内消息。校验失败时 valid=false 而非报错
// @Tags 链路帧
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.FrameDecodeRequest true "帧数据"
// @Success 200 {object} StandardResponse{data=service.FrameView} "成功"
// @Failure 400 {object} StandardResponse "参数错误"
// @Failure 422 {object} StandardResponse "帧内消息无法解码"
// @Router /api/v1/frames/decode [post]
func (h *CodecHandler) DecodeFrame(c *gin.Context) {
	var req service.FrameDecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.svc.DecodeFrame(req)
	if err != nil {
		h.fail(c, "frame decode", err)
		return
	}
	respondOK(c, view)
}

// EncodeFrame 组帧
// @Summary 编码链路帧
// @Description 追加 CRC16、转义并加首尾标志
// @Tags 链路帧
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.FrameEncodeRequest true "帧内容"
// @Success 200 {object} StandardResponse{data=service.EncodeResult} "成功"
// @Failure 400 {object} StandardResponse "参数错误"
// @Router /api/v1/frames/encode [post]
func (h *CodecHandler) EncodeFrame(c *gin.Context) {
	var req service.FrameEncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.EncodeFrame(req)
	if err != nil {
		h.fail(c, "frame encode", err)
		return
	}
	respondOK(c, res)
}

// ScanFrames 流拆帧
// @Summary 从字节流拆帧
// @Description 跳过垃圾字节，返回流中全部校验通过的帧
// @Tags 链路帧
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.FrameScanRequest true "字节流"
// @Success 200 {object} StandardResponse{data=service.ScanResult} "成功"
// @Failure 400 {object} StandardResponse "参数错误"
// @Router /api/v1/frames/scan [post]
func (h *CodecHandler) ScanFrames(c *gin.Context) {
	var req service.FrameScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.ScanFrames(req)
	if err != nil {
		h.fail(c, "frame scan", err)
		return
	}
	respondOK(c, res)
}

// DecodeMessage 解码消息
// @Summary 解码消息
// @Description 解码明文或加密消息；未知命令与单条解码失败以占位条目返回
// @Tags 消息
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.MessageDecodeRequest true "消息数据"
// @Success 200 {object} StandardResponse{data=service.MessageView} "成功"
// @Failure 400 {object} StandardResponse "参数错误"
// @Failure 422 {object} StandardResponse "消息无法解码"
// @Router /api/v1/messages/decode [post]
func (h *CodecHandler) DecodeMessage(c *gin.Context) {
	var req service.MessageDecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.svc.DecodeMessage(req)
	if err != nil {
		h.fail(c, "message decode", err)
		return
	}
	respondOK(c, view)
}

// EncodeMessage 编码消息
// @Summary 编码消息
// @Description 按命令表编码命令并追加 LRC8；secure=true 时按访问级别加密，frame=true 时同时返回链路帧
// @Tags 消息
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.MessageEncodeRequest true "命令列表"
// @Success 200 {object} StandardResponse{data=service.EncodeResult} "成功"
// @Failure 400 {object} StandardResponse "参数错误"
// @Failure 422 {object} StandardResponse "命令无法编码"
// @Router /api/v1/messages/encode [post]
func (h *CodecHandler) EncodeMessage(c *gin.Context) {
	var req service.MessageEncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.EncodeMessage(req)
	if err != nil {
		h.fail(c, "message encode", err)
		return
	}
	respondOK(c, res)
}

// ListCommands 查询已注册命令
// @Summary 查询命令表
// @Description 列出已注册的下行/上行命令
// @Tags 命令表
// @Produce json
// @Security ApiKeyAuth
// @Param direction query string false "downlink|uplink，默认全部"
// @Success 200 {object} StandardResponse{data=[]service.CommandInfo} "成功"
// @Failure 400 {object} StandardResponse "参数错误"
// @Router /api/v1/commands [get]
func (h *CodecHandler) ListCommands(c *gin.Context) {
	dir, err := message.ParseDirection(c.Query("direction"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, h.svc.Commands(dir))
}
