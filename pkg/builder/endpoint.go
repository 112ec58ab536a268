package builder

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ulikoehler/slinktree/pkg/model"
)

// endpointGrammar matches "SID#kind:index", e.g. "5#out:1" or "2::28#in:3".
//
//nolint:govet // participle grammar tags are not standard struct tags
type endpointGrammar struct {
	SID   []string `@(Int | Ident | ":")+`
	Kind  string   `"#" @Ident`
	Index int      `":" @Int`
}

var endpointLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[#:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var endpointParser = participle.MustBuild[endpointGrammar](
	participle.Lexer(endpointLexer),
	participle.Elide("Whitespace"),
)

// ParseEndpoint parses a line endpoint into a port reference.
func ParseEndpoint(s string) (model.PortRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.PortRef{}, fmt.Errorf("empty endpoint")
	}
	g, err := endpointParser.ParseString("", s)
	if err != nil {
		return model.PortRef{}, fmt.Errorf("endpoint %q: %w", s, err)
	}
	sid := strings.Join(g.SID, "")
	if strings.HasPrefix(sid, ":") || strings.HasSuffix(sid, ":") {
		return model.PortRef{}, fmt.Errorf("endpoint %q: malformed block id %q", s, sid)
	}
	if g.Index < 1 {
		return model.PortRef{}, fmt.Errorf("endpoint %q: port index must be >= 1", s)
	}
	return model.PortRef{Block: sid, Kind: g.Kind, Index: g.Index}, nil
}
