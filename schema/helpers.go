package schema

import (
	"fmt"
	"strings"
)

// DomainAlias rewrites the first occurrence of From in an address to To.
type DomainAlias struct {
	From string
	To   string
}

// DefaultDomainAliases collapses the regional mail domains onto the canonical one.
var DefaultDomainAliases = []DomainAlias{
	{From: "suse.cz", To: "suse.com"},
	{From: "suse.de", To: "suse.com"},
}

// ParseDomainAliases parses "from=to" pairs, keeping their order.
func ParseDomainAliases(pairs []string) ([]DomainAlias, error) {
	aliases := make([]DomainAlias, 0, len(pairs))
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		from, to, ok := strings.Cut(p, "=")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid domain alias %q (expected from=to)", p)
		}
		aliases = append(aliases, DomainAlias{From: from, To: to})
	}
	return aliases, nil
}

// NormalizeAuthor applies each alias in order to the address.
// Only the first occurrence of each alias is replaced.
func NormalizeAuthor(addr string, aliases []DomainAlias) string {
	addr = strings.TrimSpace(addr)
	for _, a := range aliases {
		addr = strings.Replace(addr, a.From, a.To, 1)
	}
	return addr
}
