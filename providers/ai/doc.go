// Package ai defines the vendor-neutral provider contract shared by every
// chat-completion adapter (Anthropic, Gemini, OpenAI-compatible).
//
// A [Provider] offers three calls over one vendor: [Provider.Stream] yields
// text fragments lazily, [Provider.Ask] is the concatenation of those
// fragments, and [Provider.AskWithTools] drives a bounded multi-round
// tool-calling loop ([RunToolLoop]) against a [tool.Catalog].
//
// Adapters never return errors from these calls. Failures are converted once,
// at the adapter boundary, into an "Error: ..." fragment or text and kept
// readable through [Provider.LastError] as an [*Error].
package ai
