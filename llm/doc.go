/*
Package llm holds the provider-neutral half of the generation pipeline.

# Adapters

Each provider family implements [Adapter]: it builds the HTTP request for a
[Call] and extracts the reply text from the family's response shape.
Adapters are registered by id in a [Registry] at start-up.

# Transport

[Transport.RequestJSON] runs one logical request: every attempt gets its own
timeout, failures are classified with [MapHTTPError] or [MapTransportError],
and retryable failures are retried up to RetryCount times with a linear
backoff of RetryBackoffMs multiplied by the attempt number.

[Transport.Complete] adds the structured-mode downgrade and the empty-reply
check on top.
*/
package llm
