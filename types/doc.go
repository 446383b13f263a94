/*
Package types holds the request-scoped value types shared by every layer of
contentgen.

# Overview

types is the bottom of the dependency graph. It imports nothing from the
module, so contract, vision, llm, output and generation can all exchange
values without cycles.

# Core types

  - GenerationRequest  one logical call: provider, model, prompt, platform, images, fallback
  - ImageReference     tagged union of a remote URL or inline base64 data
  - RequestConfig      timeout / retry count / backoff resolved per provider
  - Content            canonical title/hook/narrator/description/hashtags shape
  - Runtime            diagnostics attached to every successful result
  - ProviderError      the single typed failure with code, classification and retryability

# Error codes

The code set is closed. Classification and Retryable are derived from the
code by NewProviderError and must not be set independently, except that an
UPSTREAM_ERROR caused by HTTP 408/504 classifies as timeout.
*/
package types
