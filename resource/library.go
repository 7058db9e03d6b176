package resource

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/gogpu/richtext/text"
)

// ErrInvalidJSON is returned by LoadLibrary for malformed input.
var ErrInvalidJSON = errors.New("resource: invalid JSON")

// Library is a thread-safe Resolver backed by maps.
//
// The zero value is not usable; create libraries with NewLibrary.
type Library struct {
	mu      sync.RWMutex
	styles  map[string]*Style
	fonts   map[string]*text.Font
	icons   map[string]*Icon
	shaders map[string]GlyphShader
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{
		styles:  make(map[string]*Style),
		fonts:   make(map[string]*text.Font),
		icons:   make(map[string]*Icon),
		shaders: make(map[string]GlyphShader),
	}
}

// AddStyle registers s under s.Name, replacing any previous style.
func (l *Library) AddStyle(s *Style) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.styles[s.Name] = s
}

// AddFont registers f under name.
func (l *Library) AddFont(name string, f *text.Font) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fonts[name] = f
}

// AddIcon registers icon under icon.Name.
func (l *Library) AddIcon(icon *Icon) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.icons[icon.Name] = icon
}

// AddGlyphShader registers shader under name.
func (l *Library) AddGlyphShader(name string, shader GlyphShader) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shaders[name] = shader
}

// Style implements Resolver.
func (l *Library) Style(name string) *Style {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.styles[name]
}

// Font implements Resolver.
func (l *Library) Font(name string) *text.Font {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fonts[name]
}

// Icon implements Resolver.
func (l *Library) Icon(name string) *Icon {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.icons[name]
}

// GlyphShader implements Resolver.
func (l *Library) GlyphShader(name string) GlyphShader {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.shaders[name]
}

// StyleNames returns the registered style names in sorted order.
func (l *Library) StyleNames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.styles))
}

// LoadLibrary reads a JSON style sheet into a new Library.
//
// The document has optional "styles" and "icons" objects keyed by name:
//
//	{
//	  "styles": {
//	    "title": {"font": "serif", "bold": true, "color": "FFCC00FF", "shader": "wave"}
//	  },
//	  "icons": {
//	    "coin": {"width": 16, "height": 16, "ascender": 13, "descender": 3}
//	  }
//	}
//
// Fonts and shaders cannot be expressed in JSON; register them with
// AddFont and AddGlyphShader afterwards. Icon sprites are left nil.
func LoadLibrary(data []byte) (*Library, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	lib := NewLibrary()

	var err error
	doc.Get("styles").ForEach(func(key, value gjson.Result) bool {
		s := &Style{
			Name:        key.String(),
			Font:        value.Get("font").String(),
			Bold:        value.Get("bold").Bool(),
			Italic:      value.Get("italic").Bool(),
			GlyphShader: value.Get("shader").String(),
		}
		if c := value.Get("color"); c.Exists() {
			parsed, perr := ParseHex(c.String())
			if perr != nil {
				err = fmt.Errorf("resource: style %q: %w", s.Name, perr)
				return false
			}
			s.Color = &parsed
		}
		lib.AddStyle(s)
		return true
	})
	if err != nil {
		return nil, err
	}

	doc.Get("icons").ForEach(func(key, value gjson.Result) bool {
		icon := &Icon{
			Name:      key.String(),
			Width:     value.Get("width").Float(),
			Height:    value.Get("height").Float(),
			Ascender:  value.Get("ascender").Float(),
			Descender: value.Get("descender").Float(),
		}
		if !value.Get("ascender").Exists() {
			icon.Ascender = icon.Height
		}
		lib.AddIcon(icon)
		return true
	})
	return lib, nil
}
