// Package api embeds the OpenAPI document describing the HTTP interface.
package api

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var spec []byte

// Spec returns the raw OpenAPI 3 document
func Spec() []byte {
	return spec
}

// Handler serves the document as YAML
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(spec)
}
