// Package templates selects template engines by file extension tag.
//
// The recognized tags form a closed set, each mapped to an engine of the
// gofiber/template family:
//
//	hbs       -> handlebars, key "hbs"
//	jade      -> pug,        key "jade"
//	templ     -> mustache,   key "templ"
//	thymeleaf -> html,       key "html"
//
// Any other tag is ignored without error. Engines load their files from the
// configured views directory; files carry the key as extension.
//
// A Set combines the registered engines into a single fiber.Views that picks
// the engine from the extension of the rendered template name.
package templates
