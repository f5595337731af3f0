package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"messages-service/internal/observability"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// OpenAPIValidatorConfig holds configuration for OpenAPI validation middleware
type OpenAPIValidatorConfig struct {
	// Enabled controls whether validation is active
	Enabled bool
	// Spec is the raw OpenAPI 3 document
	Spec []byte
	// SkipPaths are path prefixes that bypass validation
	SkipPaths []string
}

// DefaultOpenAPIValidatorConfig validates everything except the operational endpoints
func DefaultOpenAPIValidatorConfig(enabled bool, spec []byte) *OpenAPIValidatorConfig {
	return &OpenAPIValidatorConfig{
		Enabled: enabled,
		Spec:    spec,
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/openapi.yaml",
		},
	}
}

// LoadOpenAPIRouter parses and validates the document and builds a router over its operations
func LoadOpenAPIRouter(ctx context.Context, spec []byte) (routers.Router, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAPI router: %w", err)
	}
	return router, nil
}

// OpenAPIValidator rejects requests that do not match the OpenAPI document with 400.
// Requests for paths the document does not describe are passed through so the router can 404/405 them.
func OpenAPIValidator(cfg *OpenAPIValidatorConfig) (func(http.Handler) http.Handler, error) {
	if cfg == nil || !cfg.Enabled {
		slog.Info("OpenAPI validation disabled")
		return func(next http.Handler) http.Handler { return next }, nil
	}

	router, err := LoadOpenAPIRouter(context.Background(), cfg.Spec)
	if err != nil {
		return nil, err
	}

	slog.Info("OpenAPI validation enabled")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipPath(r.URL.Path, cfg.SkipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					// Handlers decode the body as JSON whatever the declared type
					ExcludeRequestBody: !isJSONRequest(r),
					MultiError:         false,
				},
			}

			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				observability.FromContext(r.Context()).Warn("request validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()))
				writeJSONError(w, http.StatusBadRequest, validationMessage(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// validationMessage reduces a kin-openapi error to the failing rule, without echoing the whole schema
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return "Request validation failed"
	}
	if reqErr.Parameter != nil {
		return fmt.Sprintf("Invalid parameter %q", reqErr.Parameter.Name)
	}
	if reqErr.RequestBody != nil {
		return "Invalid request body"
	}
	return "Request validation failed"
}

// isJSONRequest reports whether the body is declared as JSON
func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// shouldSkipPath checks if a path should skip validation
func shouldSkipPath(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
