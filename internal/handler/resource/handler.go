package resource

import (
	"ikhtibar/internal/service"
)

// Handler serves the media resource endpoints. All resource operations
// go through the resource service.
type Handler struct {
	resourceService service.ResourceService
}

// NewHandler creates the resource handler.
func NewHandler(resourceService service.ResourceService) *Handler {
	return &Handler{
		resourceService: resourceService,
	}
}
