// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"

	"irms/cli/internal/config"
)

// New creates a backend API implementation over the given HTTP client.
// Credentials are expected to be added by the client's transport.
func New(baseURL string, endpoints config.Endpoints, client *http.Client) API {
	return newHTTP(baseURL, endpoints, client)
}
