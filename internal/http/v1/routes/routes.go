package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/hello-api/internal/http/v1/hello"
)

// Register wires all API operations into the provided huma API.
func Register(api huma.API) {
	hello.Register(api)
}
