// Package markup tokenizes rich-text markup.
//
// Markup is plain text with inline commands delimited by pipes:
//
//	|b|            toggle bold
//	|i|            toggle italic
//	|c:RRGGBBAA|   push a color, |c| pops it
//	|font:NAME|    push a font, |font| pops it
//	|style:NAME|   push a style, |style| pops it
//	|shader:NAME|  push a glyph shader, |shader| pops it
//	|link:TARGET|  push a link, |link| pops it
//	|icon:NAME|    inline icon
//	|name|, |name:VALUE|  registered custom command
//
// "||" is a literal pipe, as is a pipe followed by whitespace or the end of
// the text. Anything that looks like a command but is not one stays text.
//
// Parse tokenizes a whole source. ParseIncremental updates an existing
// TokenStream after an edit and re-lexes only the tokens the edit can
// affect.
package markup
