// Package webfetch provides the fetch_url tool: it downloads a web page and
// hands the model its content as Markdown.
//
// [New] returns the tool definition; [Fetcher.Fetch] is the underlying call
// and can be used directly.
package webfetch
