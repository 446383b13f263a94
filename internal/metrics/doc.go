/*
Package metrics collects Prometheus metrics for the generation pipeline.

# Overview

Collector registers every metric through promauto under one namespace. The
llm, generation and discovery packages depend only on small observer
interfaces that Collector satisfies; the binary wires it in.

# Metrics

  - http_requests_total / http_request_duration_seconds, by method, path, status class
  - generation_requests_total / generation_duration_seconds, by provider, outcome, classification
  - provider_attempts_total, by provider, stage, result
  - structured_mode_fallbacks_total, by provider
  - output_parse_path_total, by path (json, labeled, none)
  - model_discovery_requests_total, by provider, source, outcome
*/
package metrics
