package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/relay/internal/audit"
	"github.com/nfrund/relay/internal/config"
	"github.com/nfrund/relay/internal/gateway"
	"github.com/nfrund/relay/internal/logging"
	"github.com/nfrund/relay/internal/pubsub"
	"github.com/nfrund/relay/internal/relay"
	"github.com/nfrund/relay/internal/websocket"
)

// Server holds the dependencies for the relay process.
type Server struct {
	E          *echo.Echo
	Cfg        *config.Config
	Bus        *pubsub.WatermillBridge
	Directory  *relay.Directory
	Dispatcher *relay.Dispatcher
	wsHandler  *websocket.Handler
}

// New creates a Server configured from the environment.
func New() (*Server, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.New(cfg.LogFormat)

	gw := gateway.New(cfg.APIURL, cfg.APITimeout)
	return NewWithGateway(cfg, gw), nil
}

// NewWithGateway creates a Server with an explicit gateway, which lets
// tests substitute a fake backend.
func NewWithGateway(cfg *config.Config, gw relay.Gateway) *Server {
	bus := pubsub.NewWatermillBridge()

	directory := relay.NewDirectory()
	dispatcher := relay.NewDispatcher(directory, relay.NewSender(), gw, bus)
	wsHandler := websocket.NewHandler(dispatcher, cfg.SendBuffer)

	// The audit subscriber is the sole observer of the dispatcher's
	// fire-and-forget results. It lives until the bus is closed.
	auditSub := audit.NewSubscriber(bus)
	auditSub.Start(context.Background())

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	return &Server{
		E:          e,
		Cfg:        cfg,
		Bus:        bus,
		Directory:  directory,
		Dispatcher: dispatcher,
		wsHandler:  wsHandler,
	}
}
