// Package teng is the entry point of the module. It re-exports the data tree,
// request and extension types and offers GeneratePage, which renders a page
// with the reference pongo2 engine and returns status, output and error log
// together:
//
//	root, _ := teng.DataFrom(map[string]any{"name": "Ada"})
//	defer root.Release()
//	res := teng.GeneratePage(ctx, teng.Request{
//		TemplateString: "Hello {{ name|upper }}",
//		Data:           root,
//	})
//
// Lower level pieces live under pkg/: data (trees), writer (output sinks),
// errlog (diagnostics), udf (extension functions), datasource (decoding
// documents into trees) and render (the renderer contract and engine).
package teng
