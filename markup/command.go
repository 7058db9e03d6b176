package markup

import (
	"regexp"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// MaxCustomCommands is the number of custom commands a CommandSet can hold.
// Custom ids are bytes and id 0 is reserved.
const MaxCustomCommands = 127

// The body of a command, between its pipes: NAME or NAME:ARG.
// The argument runs to the closing pipe and may contain any character.
var (
	commandLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Name", Pattern: `[A-Za-z_][A-Za-z0-9_.\-]*`},
			{Name: "Colon", Pattern: `:`, Action: lexer.Push("Arg")},
		},
		"Arg": {
			{Name: "Arg", Pattern: `[^|\r\n]+`},
		},
	})

	commandParser = participle.MustBuild[commandBody](
		participle.Lexer(commandLexer),
	)

	commandName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)
)

// commandBody is the parsed text between a command's pipes.
type commandBody struct {
	Name   string `parser:"@Name"`
	HasArg bool   `parser:"@Colon?"`
	Arg    string `parser:"@Arg?"`
}

// parseCommandBody parses body, returning nil when it is not a command.
func parseCommandBody(body string) *commandBody {
	cmd, err := commandParser.ParseString("", body)
	if err != nil {
		return nil
	}
	return cmd
}

// builtinCommands cannot be registered as custom commands.
var builtinCommands = map[string]struct{}{
	"b": {}, "i": {}, "c": {}, "font": {}, "shader": {}, "link": {}, "style": {}, "icon": {},
}

// CommandSet is a registry of custom command names.
//
// Ids are assigned in registration order starting at 1 and are never
// reclaimed. CommandSet is safe for concurrent use.
type CommandSet struct {
	mu    sync.RWMutex
	names []string
	ids   map[string]byte
}

// NewCommandSet creates an empty command set.
func NewCommandSet() *CommandSet {
	return &CommandSet{ids: make(map[string]byte)}
}

// Register adds name and returns its id. Registering a known name returns
// the existing id.
func (cs *CommandSet) Register(name string) (byte, error) {
	if !commandName.MatchString(name) {
		return 0, ErrInvalidCommandName
	}
	if _, ok := builtinCommands[name]; ok {
		return 0, ErrInvalidCommandName
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if id, ok := cs.ids[name]; ok {
		return id, nil
	}
	if len(cs.names) >= MaxCustomCommands {
		return 0, ErrTooManyCommands
	}
	cs.names = append(cs.names, name)
	id := byte(len(cs.names))
	cs.ids[name] = id
	return id, nil
}

// Lookup returns the id of name.
func (cs *CommandSet) Lookup(name string) (byte, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	id, ok := cs.ids[name]
	return id, ok
}

// Name returns the name registered under id, or "" if there is none.
func (cs *CommandSet) Name(id byte) string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if id == 0 || int(id) > len(cs.names) {
		return ""
	}
	return cs.names[id-1]
}

// Len returns the number of registered commands.
func (cs *CommandSet) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.names)
}

var defaultCommands = NewCommandSet()

// DefaultCommandSet returns the process-wide command set used by parsers
// created without WithCommandSet.
func DefaultCommandSet() *CommandSet { return defaultCommands }

// RegisterCustomCommand registers name in the default command set.
func RegisterCustomCommand(name string) (byte, error) {
	return defaultCommands.Register(name)
}
