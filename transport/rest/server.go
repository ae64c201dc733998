package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

type roomCreator interface {
	CreateRoomCode() string
}

// Server is the small lobby surface next to the WebSocket endpoint: room
// code creation, a join-URL QR code and a health check.
type Server struct {
	creator   roomCreator
	publicURL string
}

func NewServer(creator roomCreator, publicURL string) *Server {
	return &Server{
		creator:   creator,
		publicURL: publicURL,
	}
}

func (that *Server) Start(ctx context.Context, port string) error {
	mux := httprouter.New()

	mux.GET("/", that.handleIndex)
	mux.GET("/ping", that.handlePing)
	mux.GET("/create_room", that.handleCreateRoom)
	mux.GET("/room/:code/qr", that.handleRoomQR)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
