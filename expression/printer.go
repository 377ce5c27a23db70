package expression

import (
	"bytes"
)

// Printer accumulates the diagnostic form of a tree
type Printer struct {
	out bytes.Buffer
}

// Append writes s
func (p *Printer) Append(s string) *Printer {
	p.out.WriteString(s)

	return p
}

// Visit prints n, nil nodes print as <nil>
func (p *Printer) Visit(n Node) *Printer {
	if n == nil {
		return p.Append("<nil>")
	}

	n.Print(p)

	return p
}

func (p *Printer) String() string {
	return p.out.String()
}

// Print returns the diagnostic form of n
func Print(n Node) string {
	var p Printer

	return p.Visit(n).String()
}
