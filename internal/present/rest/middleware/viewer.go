package middleware

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/forcize/hylo-node/internal/domain"
)

var tracer = otel.Tracer("viewer")

// ViewerMiddleware resolves the acting user from the request and stores
// the id in the request context. Identity verification happens
// upstream; requests without a viewer header proceed anonymously.
type ViewerMiddleware struct{}

func NewViewerMiddleware() *ViewerMiddleware {
	return &ViewerMiddleware{}
}

func (m *ViewerMiddleware) IdentifyViewer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Viewer.Middleware.IdentifyViewer")
		defer span.End()

		header := c.Request().Header.Get("X-Viewer-Id")
		if header != "" {
			viewerID, err := strconv.ParseInt(header, 10, 64)
			if err == nil && viewerID > 0 {
				ctx = context.WithValue(ctx, domain.ViewerIdCtxKey, viewerID)
				span.SetAttributes(attribute.Int64("ViewerId", viewerID))
			} else {
				span.RecordError(err)
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// ViewerID extracts the viewer id stored by IdentifyViewer. ok is false
// for anonymous requests.
func ViewerID(ctx context.Context) (int64, bool) {
	viewerID, ok := ctx.Value(domain.ViewerIdCtxKey).(int64)
	return viewerID, ok
}
