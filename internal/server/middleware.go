package server

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"taskboard/internal/domain/errors"
	"taskboard/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestLogger tags each request with an id (taken from X-Request-ID when
// the client sent one) and logs one line per request once it completes.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.Header(requestIDHeader, id)

		ctx.Next()

		status := ctx.Writer.Status()
		args := []any{
			"request_id", id,
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"client_ip", ctx.ClientIP(),
		}
		if status >= http.StatusInternalServerError {
			log.Error(ctx.Request.Context(), "request failed", args...)
			return
		}
		log.Info(ctx.Request.Context(), "request handled", args...)
	}
}

func requestID(ctx *gin.Context) string {
	return ctx.GetString(requestIDKey)
}

// gzipBody closes both the gzip reader and the original request body.
type gzipBody struct {
	io.Reader
	zr   io.Closer
	body io.Closer
}

func (b *gzipBody) Close() error {
	zerr := b.zr.Close()
	berr := b.body.Close()
	if zerr != nil {
		return zerr
	}
	return berr
}

// GzipRequestDecompress transparently inflates bodies sent with
// Content-Encoding: gzip.
func GzipRequestDecompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !strings.Contains(strings.ToLower(ctx.GetHeader("Content-Encoding")), "gzip") {
			ctx.Next()
			return
		}

		zr, err := gzip.NewReader(ctx.Request.Body)
		if err != nil {
			abort(ctx, invalid(errors.ErrInvalidGzipRequest.Error()))
			return
		}

		ctx.Request.Body = &gzipBody{Reader: zr, zr: zr, body: ctx.Request.Body}
		ctx.Request.Header.Del("Content-Encoding")
		ctx.Request.Header.Del("Content-Length")
		ctx.Request.ContentLength = -1
		ctx.Next()
	}
}

// Responses smaller than this are sent as is.
const minCompressSize = 1024

var compressibleTypes = []string{
	"application/json",
	"application/javascript",
	"text/plain",
	"text/html",
}

// gzipWriter buffers the first minCompressSize bytes of a response and
// switches to gzip only when the body turns out to be large enough.
type gzipWriter struct {
	gin.ResponseWriter
	zw     *gzip.Writer
	status int
	buf    bytes.Buffer
}

func (w *gzipWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	if w.zw != nil {
		n, err := w.zw.Write(data)
		if err != nil {
			return n, errors.ErrGzipCompressionFailed
		}
		return n, nil
	}

	n, _ := w.buf.Write(data)
	if w.buf.Len() >= minCompressSize && w.compressible() {
		w.startGzip()
		if _, err := w.zw.Write(w.buf.Bytes()); err != nil {
			return 0, errors.ErrGzipCompressionFailed
		}
		w.buf.Reset()
	}
	return n, nil
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipWriter) compressible() bool {
	if w.status == http.StatusNoContent || w.status == http.StatusNotModified {
		return false
	}
	h := w.ResponseWriter.Header()
	if h.Get("Content-Encoding") != "" {
		return false
	}
	ct := strings.ToLower(h.Get("Content-Type"))
	for _, prefix := range compressibleTypes {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return false
}

func (w *gzipWriter) startGzip() {
	h := w.ResponseWriter.Header()
	h.Del("Content-Length")
	h.Set("Content-Encoding", "gzip")
	w.zw = gzip.NewWriter(w.ResponseWriter)
}

// finish flushes whatever is still buffered once the handler chain is done.
func (w *gzipWriter) finish() error {
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return errors.ErrGzipCompressionFailed
		}
		return nil
	}
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func (w *gzipWriter) Flush() {
	if w.zw != nil {
		_ = w.zw.Flush()
	} else if w.buf.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.buf.Bytes())
		w.buf.Reset()
	}
	w.ResponseWriter.Flush()
}

func (w *gzipWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// GzipResponseCompress compresses large JSON and text responses for clients
// that accept gzip.
func GzipResponseCompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodHead ||
			!strings.Contains(strings.ToLower(ctx.GetHeader("Accept-Encoding")), "gzip") {
			ctx.Next()
			return
		}

		ctx.Writer.Header().Add("Vary", "Accept-Encoding")
		gw := &gzipWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = gw

		ctx.Next()

		if err := gw.finish(); err != nil {
			_ = ctx.Error(err)
		}
	}
}
