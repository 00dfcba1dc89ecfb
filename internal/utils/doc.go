// Package utils holds the low-level helpers shared by the vendor adapters
// and tools: JSON POST and SSE streaming over net/http, lenient JSON
// decoding, and small generic helpers.
package utils
