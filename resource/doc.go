// Package resource holds the named values markup can refer to: styles,
// icons, fonts and glyph shaders.
//
// A Library maps names to values. Layout resolves |style:NAME|,
// |font:NAME|, |icon:NAME| and |shader:NAME| commands through the Resolver
// interface, which Library implements. Libraries can be filled in code or
// loaded from a JSON style sheet with LoadLibrary.
package resource
