package style

// Answers maps a survey question code (Q1..Q7) to the selected option letter.
// Unknown codes and options are ignored by the classifier.
type Answers map[string]string

// Question codes that vote for a group.
var questionCodes = []string{"Q1", "Q2", "Q3", "Q4", "Q5", "Q6", "Q7"}

// GroupMap maps each question's option to the group it votes for.
// Every entry is currently the identity mapping.
var GroupMap = map[string]map[string]Group{
	"Q1": {"A": GroupA, "B": GroupB, "C": GroupC},
	"Q2": {"A": GroupA, "B": GroupB, "C": GroupC},
	"Q3": {"A": GroupA, "B": GroupB, "C": GroupC},
	"Q4": {"A": GroupA, "B": GroupB, "C": GroupC},
	"Q5": {"A": GroupA, "B": GroupB, "C": GroupC},
	"Q6": {"A": GroupA, "B": GroupB, "C": GroupC},
	"Q7": {"A": GroupA, "B": GroupB, "C": GroupC},
}

// increment adds weight to a style's score.
type increment struct {
	code   Code
	weight int
}

// weightTable maps question -> option -> score increments.
type weightTable map[string]map[string][]increment

// Within-group scoring only looks at Q3..Q7.
var groupWeights = map[Group]weightTable{
	GroupA: {
		// tidiness
		"Q6": {"A": {{MinimalModern, 2}}, "C": {{Industrial, 2}}},
		// color
		"Q3": {"A": {{MinimalModern, 1}}, "C": {{Industrial, 2}}},
		// material
		"Q4": {"A": {{Industrial, 1}}, "B": {{MinimalModern, 1}}},
		// props
		"Q5": {"A": {{MinimalModern, 1}}, "C": {{Industrial, 1}}},
		// lighting
		"Q7": {"A": {{MinimalModern, 2}}, "C": {{Industrial, 2}}},
	},
	GroupB: {
		"Q3": {"A": {{Scandinavian, 1}}, "B": {{NaturalWood, 2}}, "C": {{Planterior, 2}}},
		"Q4": {"B": {{NaturalWood, 2}}, "C": {{Planterior, 2}}},
		"Q5": {"B": {{NaturalWood, 1}}, "C": {{Planterior, 1}}},
		"Q6": {"A": {{Scandinavian, 1}}, "B": {{NaturalWood, 1}}, "C": {{Planterior, 2}}},
		"Q7": {"B": {{Scandinavian, 1}, {NaturalWood, 1}}, "C": {{Planterior, 2}}},
	},
	GroupC: {
		"Q3": {"A": {{VintageAntique, 1}}, "B": {{Midcentury, 1}}, "C": {{Pastel, 2}}},
		"Q4": {"C": {{VintageAntique, 1}, {Midcentury, 1}}},
		"Q5": {"C": {{VintageAntique, 2}}},
		"Q6": {"C": {{Pastel, 1}, {VintageAntique, 1}}},
		"Q7": {"C": {{Pastel, 1}, {VintageAntique, 1}}},
	},
}

// PickGroup tallies one vote per recognised answer and returns the group with
// the most votes. Ties go to the earlier group in A, B, C order, so an empty
// answer set yields GroupA.
func PickGroup(answers Answers) Group {
	tally := make(map[Group]int, len(groupOrder))
	for _, q := range questionCodes {
		opt, ok := answers[q]
		if !ok {
			continue
		}
		g, ok := GroupMap[q][opt]
		if !ok {
			continue
		}
		tally[g]++
	}

	best := groupOrder[0]
	for _, g := range groupOrder[1:] {
		if tally[g] > tally[best] {
			best = g
		}
	}
	return best
}

// PickStyleInGroup scores the group's candidates against Q3..Q7 and returns
// the highest scorer. Ties go to the candidate declared first. An unknown
// group falls back to GroupA.
func PickStyleInGroup(group Group, answers Answers) Code {
	if _, ok := groupCandidates[group]; !ok {
		group = GroupA
	}
	return topScorer(groupCandidates[group], scoreGroup(group, answers))
}

// PickFinalStyle resolves the group for answers and then the style within it.
func PickFinalStyle(answers Answers) Code {
	return PickStyleInGroup(PickGroup(answers), answers)
}

// Classification is the full trace of a classifier run.
type Classification struct {
	Scores map[Code]int `json:"scores"`
	Group  Group        `json:"group"`
	Style  Code         `json:"style"`
}

// Classify runs the classifier and also reports the within-group scores.
func Classify(answers Answers) Classification {
	group := PickGroup(answers)
	scores := scoreGroup(group, answers)
	return Classification{
		Group:  group,
		Style:  topScorer(groupCandidates[group], scores),
		Scores: scores,
	}
}

// scoreGroup builds a fresh score table holding every candidate of group.
func scoreGroup(group Group, answers Answers) map[Code]int {
	scores := make(map[Code]int, len(groupCandidates[group]))
	for _, c := range groupCandidates[group] {
		scores[c] = 0
	}
	for q, options := range groupWeights[group] {
		opt, ok := answers[q]
		if !ok {
			continue
		}
		for _, inc := range options[opt] {
			scores[inc.code] += inc.weight
		}
	}
	return scores
}

// topScorer returns the first candidate holding the maximum score.
func topScorer(candidates []Code, scores map[Code]int) Code {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return best
}
