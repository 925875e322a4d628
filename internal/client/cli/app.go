package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/client/client"
	"github.com/dmitrijs2005/stickyhabits/internal/client/config"
	"github.com/dmitrijs2005/stickyhabits/internal/client/services"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config       *config.Config
	authService  services.AuthService
	habitService services.HabitService
	reader       *bufio.Reader
	out          io.Writer

	mu       sync.Mutex
	userName string
	Mode     Mode
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewEscrowClientService(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	as := services.NewAuthService(apiClient)
	hs := services.NewHabitService(apiClient, &http.Client{Timeout: time.Minute})

	return &App{config: c, authService: as, habitService: hs, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = name
}

func (a *App) user() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName
}

func (a *App) isLoggedIn() bool {
	return a.user() != ""
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	a.Root(ctx)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(ctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
