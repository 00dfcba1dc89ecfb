// Package gemini implements [ai.Provider] for Google's Gemini
// generateContent API.
//
// Gemini has no system role in plain contents, so a system prompt is sent as
// a priming user turn answered by a synthetic model turn ("Understood.").
// Function calls carry no ids on most models; the adapter synthesizes one per
// call so the tool log can tell calls apart.
package gemini
