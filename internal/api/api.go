package api

import (
	"errors"
	"github.com/kglearn/frontgate/internal/api/frontend"
	"github.com/kglearn/frontgate/internal/config"
	"github.com/kglearn/frontgate/internal/router"
	"github.com/kglearn/frontgate/internal/storage"
	"net/http"
)

// Service represents the front server service
type Service struct {
	Config *config.Config

	// Driver may be nil to keep client records in cookies
	Driver storage.Driver

	// Table may be nil to use the built-in route table
	Table *router.Table

	frontend *frontend.Service
}

// Startup binds the listen address and starts serving in the background.
// Errors raised while serving are sent to errs.
func (service *Service) Startup(errs chan<- error) error {
	frontendService := &frontend.Service{
		Config: service.Config,
		Driver: service.Driver,
		Table:  service.Table,
	}
	if err := frontendService.Listen(); err != nil {
		return err
	}
	service.frontend = frontendService
	go func() {
		if err := frontendService.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	return nil
}

// Shutdown shuts down the front server
func (service *Service) Shutdown() {
	if service.frontend != nil {
		service.frontend.Shutdown()
		service.frontend = nil
	}
}
