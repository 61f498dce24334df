package upload

import (
	"bufio"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/penline/core/internal/pkg/metrics"
	"github.com/penline/core/internal/pkg/response"
)

const formField = "image"

type Options struct {
	AllowedFormats []string
	MaxBytes       int64
}

type Handler struct {
	storage Storage
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewHandler(storage Storage, opts Options, logger *zap.Logger, m *metrics.Metrics) *Handler {
	return &Handler{storage: storage, opts: opts, logger: logger.Named("Upload"), metrics: m}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/upload", authMW, h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	if h.opts.MaxBytes > 0 {
		// multipart framing overhead on top of the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxBytes + 1<<20)
	}

	fileHeader, err := c.FormFile(formField)
	if err != nil {
		h.count("rejected")
		response.BadRequest(c, "Please upload a file")
		return
	}
	if err := validateFile(fileHeader.Filename, fileHeader.Size, h.opts.AllowedFormats, h.opts.MaxBytes); err != nil {
		h.count("rejected")
		response.BadRequest(c, err.Error())
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.count("failed")
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(512)
	name := buildFileName(fileHeader.Filename)
	if err := h.storage.Save(c.Request.Context(), name, detectContentType(name, head), br, fileHeader.Size); err != nil {
		h.count("failed")
		response.InternalError(c, err)
		return
	}

	h.count("stored")
	h.logger.Info("file uploaded",
		zap.String("name", name),
		zap.String("backend", h.storage.Name()),
		zap.Int64("size", fileHeader.Size),
	)
	response.OK(c, name)
}

func (h *Handler) count(outcome string) {
	h.metrics.Uploads.WithLabelValues(h.storage.Name(), outcome).Inc()
}
