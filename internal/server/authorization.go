package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/clientbase/internal/orgcontext"
)

func (s *Server) authorizeAction(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorizeActionWithContext(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeActionWithContext(c *gin.Context, object string, action string) error {
	ctx := c.Request.Context()
	actor, ok := orgcontext.ActorFromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	companyID, ok := orgcontext.CompanyIDFromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	if s.authzSvc == nil {
		return ErrForbidden
	}
	return s.authzSvc.Authorize(ctx, actor.UserID, companyID, strings.TrimSpace(object), strings.TrimSpace(action))
}
