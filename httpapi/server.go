package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adaverc/adaforms-demo-api/digest"
	"github.com/adaverc/adaforms-demo-api/model"
	"github.com/adaverc/adaforms-demo-api/verify"
)

// Server answers lookups from an Authority, typically a
// verify.LedgerAuthority.
type Server struct {
	Authority verify.Authority
	// Logger is optional.
	Logger *zap.Logger
}

// Handler builds the gin engine. Callers pick the gin mode.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	r.GET(HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST(VerifyPath, s.handleVerify)
	return r
}

func (s *Server) handleVerify(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req model.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, model.ErrInvalidRequest, "request body must be a JSON object")
		return
	}
	d, err := digest.Parse(req.DigestValue())
	switch {
	case errors.Is(err, digest.ErrEmpty):
		abort(c, http.StatusBadRequest, model.ErrInvalidDigest, "Please enter a digest to verify")
		return
	case err != nil:
		abort(c, http.StatusBadRequest, model.ErrInvalidDigest, "digest must be exactly 64 lowercase hexadecimal characters")
		return
	}
	if s.Authority == nil {
		abort(c, http.StatusServiceUnavailable, model.ErrMissingLedger, "no ledger configured")
		return
	}

	res, err := s.Authority.Verify(c.Request.Context(), d)
	if err != nil {
		s.logger().Warn("lookup failed",
			zap.String("digest", d.String()),
			zap.String("request_id", c.GetString(HeaderRequestID)),
			zap.Error(err))
		abort(c, http.StatusBadGateway, model.ErrLookupFailed, "ledger lookup failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

func abort(c *gin.Context, status int, code model.ErrorCode, msg string) {
	c.AbortWithStatusJSON(status, model.NewError(code, msg))
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger().Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", c.GetString(HeaderRequestID)))
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
