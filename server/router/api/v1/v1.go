// Package v1 exposes the assistant's REST surface: the chat endpoint plus
// session management.
package v1

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/finsense/internal/profile"
	"github.com/hrygo/finsense/plugin/ai/agent"
	"github.com/hrygo/finsense/plugin/ai/session"
	"github.com/hrygo/finsense/server/middleware"
	"github.com/hrygo/finsense/store"
)

// TurnRunner runs one conversational turn against a session state.
// *agent.Engine is the production implementation.
type TurnRunner interface {
	Turn(ctx context.Context, state *agent.State, userText string) (string, error)
}

type APIV1Service struct {
	Profile  *profile.Profile
	Store    *store.Store
	Sessions session.Service
	Engine   TurnRunner

	locker      *session.Locker
	rateLimiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, sessions session.Service, engine TurnRunner) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Store:       store,
		Sessions:    sessions,
		Engine:      engine,
		locker:      session.NewLocker(),
		rateLimiter: middleware.NewRateLimiter(5, 10),
	}
}

// Register mounts all v1 routes on the echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	group := echoServer.Group("/api/v1")
	group.Use(s.rateLimiter.Middleware())

	group.POST("/chat", s.Chat)
	group.GET("/sessions", s.ListSessions)
	group.DELETE("/sessions/:id", s.DeleteSession)
	group.GET("/system/metrics/overview", s.GetMetricsOverview)
}
