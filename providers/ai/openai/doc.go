// Package openai implements [ai.Provider] for the OpenAI Chat Completions
// wire format.
//
// [Compatible] holds the whole implementation and is shared by every
// OpenAI-compatible vendor: [New] points it at api.openai.com, and the
// openrouter package builds one with its own base URL and headers through
// [NewCompatible].
package openai
