// Package generation runs a content generation request end to end.
//
// A Generator resolves the provider adapter and request settings, routes
// image references, assembles the prompts, calls the backend through
// llm.Transport and turns the reply into normalized platform content.
// Requests without a provider never touch the network and return the
// normalized fallback.
package generation
