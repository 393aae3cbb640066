// Package llm provides an OpenRouter chat client used to generate person
// attributes during enrichment.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Generate: send an instruction and a subject, receive free-form text.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: decode JSON out of a model reply, tolerating code fences and
// surrounding prose.
//
// Enrichment calls are single attempt. Config.Attempts allows immediate
// retries for HTTP 408/429/5xx, empty replies and network errors; client
// errors and cancellation end the call at once.
package llm
