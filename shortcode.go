// Package shortcode finds, renders and strips bracket shortcodes in text.
//
// A shortcode is an inline directive written in square brackets:
//
//	[youtube id="dQw4w9WgXcQ" /]
//	[note type=warning]Back up first.[/note]
//
// Tag names are three or more lower-case ASCII letters. Attributes may be
// double-quoted, single-quoted or bare; a word without a value is a flag:
//
//	[gallery columns=3 "lightbox" autoplay]
//
// # Basic Usage
//
// Register handlers and compile:
//
//	engine := shortcode.MustNew()
//	engine.MustRegisterShortcode("note", shortcode.InlineCallback(
//	    func(ctx context.Context, sc *shortcode.Shortcode) (string, error) {
//	        kind := sc.Params.GetDefault("type", "info")
//	        return `<aside class="` + kind + `">` + sc.Content + `</aside>`, nil
//	    }))
//
//	out, err := engine.Compile(ctx, "[note type=warning]Back up first.[/note]")
//	// out: <aside class="warning">Back up first.</aside>
//
// # Escaping
//
// Doubled brackets print a shortcode literally, with one bracket layer
// removed:
//
//	[[note]]text[[/note]]  ->  [note]text[/note]
//
// The verbatim flag does the same for a single tag:
//
//	[note verbatim]text[/note]  ->  [note]text[/note]
//
// Tags without a registration are left untouched, so text such as Markdown
// reference links ("[title]: https://example.com") survives compilation.
//
// # Handlers
//
// Callbacks name a registered function, a registered type (whose Parse
// method is invoked) or a "Type@method" pair, or wrap a function inline:
//
//	registry := shortcode.NewRegistry(logger)
//	registry.RegisterType("Media", func() any { return &Media{} })
//	registry.MustRegisterShortcode("img:image", shortcode.ParseCallback("Media@image"))
//
// # Templates
//
// Settings bind tags to text/template sources kept in a TemplateStorage
// (memory, filesystem or PostgreSQL):
//
//	settings, _ := shortcode.LoadSettings("shortcodes.yaml")
//	engine, storage, _ := settings.NewEngine(ctx, shortcode.WithLogger(logger))
//	defer storage.Close()
package shortcode
