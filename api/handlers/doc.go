/*
Package handlers implements the contentgen HTTP endpoints.

# Handlers

  - GenerateHandler: POST /v1/generate, runs one generation request
  - ModelsHandler: GET /v1/models, lists provider models
  - HealthHandler: /health, /healthz, /ready and /version

Every reply is a [Response] envelope. Pipeline failures carry the
ProviderError fields in [ErrorInfo] and use its HTTPStatus: timeout 504,
rate_limit 429, validation 400, anything else 502.
*/
package handlers
