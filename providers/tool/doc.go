// Package tool turns Go functions into tool definitions a model can call,
// keeps them in a [Catalog], and dispatches calls through an [Executor].
//
// A tool handler has the shape func(ctx, I) (O, error) where I is a struct
// whose json-tagged fields are the parameters. [New] derives the JSON Schema
// once, at construction; [Executor.Execute] validates, decodes, invokes and
// always answers with a JSON string, so a failing tool never interrupts a
// tool-calling loop.
package tool
