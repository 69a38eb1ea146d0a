package hello

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/hello-api/internal/platform/logging"
)

// Path is the route served by this package.
const Path = "/hello"

// Register wires hello routes into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-hello",
		Method:      http.MethodGet,
		Path:        Path,
		Summary:     "Get a greeting",
		Description: "Returns a static greeting. The request is not inspected.",
		Tags:        []string{"Hello"},
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	applog.LogInfo(ctx, "hello get", zap.String("path", Path))
	return &GetOutput{Body: Data{Message: Message}}, nil
}
