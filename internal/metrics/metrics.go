package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// 结果标签取值
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// CodecMetrics 编解码指标
type CodecMetrics struct {
	FrameDecodeTotal      *prometheus.CounterVec // labels: result=ok|invalid
	FrameEncodeTotal      prometheus.Counter
	MessageDecodeTotal    *prometheus.CounterVec // labels: kind=plain|secure, result=ok|invalid|error
	MessageEncodeTotal    *prometheus.CounterVec // labels: kind, result=ok|error
	CommandTotal          *prometheus.CounterVec // labels: direction, command, result=ok|unknown|error
	ChecksumMismatchTotal *prometheus.CounterVec // labels: layer=frame|message
	RateLimitedTotal      prometheus.Counter
	BytesDecoded          prometheus.Histogram
}

// NewCodecMetrics 注册并返回编解码指标
func NewCodecMetrics(reg prometheus.Registerer) *CodecMetrics {
	m := &CodecMetrics{
		FrameDecodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codec_frame_decode_total",
			Help: "Link frame decode attempts.",
		}, []string{"result"}),
		FrameEncodeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codec_frame_encode_total",
			Help: "Link frames encoded.",
		}),
		MessageDecodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codec_message_decode_total",
			Help: "Message decode attempts.",
		}, []string{"kind", "result"}),
		MessageEncodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codec_message_encode_total",
			Help: "Message encode attempts.",
		}, []string{"kind", "result"}),
		CommandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codec_command_total",
			Help: "Decoded commands by direction and name.",
		}, []string{"direction", "command", "result"}),
		ChecksumMismatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codec_checksum_mismatch_total",
			Help: "Checksum mismatches by protocol layer.",
		}, []string{"layer"}),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "api_rate_limited_total",
			Help: "API requests rejected by the rate limiter.",
		}),
		BytesDecoded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "codec_decode_bytes",
			Help:    "Size of decoded inputs in bytes.",
			Buckets: prometheus.ExponentialBuckets(8, 2, 8),
		}),
	}
	reg.MustRegister(
		m.FrameDecodeTotal,
		m.FrameEncodeTotal,
		m.MessageDecodeTotal,
		m.MessageEncodeTotal,
		m.CommandTotal,
		m.ChecksumMismatchTotal,
		m.RateLimitedTotal,
		m.BytesDecoded,
	)
	return m
}
