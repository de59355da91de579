// Package style maps interior-design survey answers to one of eight style codes
// and holds the static catalog data attached to each code.
package style

// Code identifies one of the eight interior-design styles.
type Code string

// Style codes, in declaration order.
const (
	MinimalModern  Code = "MINIMAL_MODERN"
	Scandinavian   Code = "SCANDINAVIAN"
	NaturalWood    Code = "NATURAL_WOOD"
	VintageAntique Code = "VINTAGE_ANTIQUE"
	Pastel         Code = "PASTEL"
	Industrial     Code = "INDUSTRIAL"
	Midcentury     Code = "MIDCENTURY"
	Planterior     Code = "PLANTERIOR"
)

var allCodes = []Code{
	MinimalModern,
	Scandinavian,
	NaturalWood,
	VintageAntique,
	Pastel,
	Industrial,
	Midcentury,
	Planterior,
}

// All returns every style code in declaration order.
func All() []Code {
	out := make([]Code, len(allCodes))
	copy(out, allCodes)
	return out
}

// Parse returns the code named by s, if it is one of the eight styles.
func Parse(s string) (Code, bool) {
	for _, c := range allCodes {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is a known style code.
func (c Code) Valid() bool {
	_, ok := Parse(string(c))
	return ok
}

func (c Code) String() string {
	return string(c)
}

// Group is a coarse bucket partitioning the style codes.
type Group string

// Groups, in tie-break priority order.
const (
	GroupA Group = "A"
	GroupB Group = "B"
	GroupC Group = "C"
)

var groupOrder = []Group{GroupA, GroupB, GroupC}

// Candidate subsets, ordered for tie-breaking within the group.
var groupCandidates = map[Group][]Code{
	GroupA: {MinimalModern, Industrial},
	GroupB: {Scandinavian, NaturalWood, Planterior},
	GroupC: {VintageAntique, Midcentury, Pastel},
}

// Groups returns the groups in tie-break priority order.
func Groups() []Group {
	out := make([]Group, len(groupOrder))
	copy(out, groupOrder)
	return out
}

// Candidates returns the style codes a group can resolve to, in tie-break order.
// Unknown groups have no candidates.
func (g Group) Candidates() []Code {
	src := groupCandidates[g]
	out := make([]Code, len(src))
	copy(out, src)
	return out
}
