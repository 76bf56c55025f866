package practice

import "strconv"

// Group is one collapsible practice category: a TOEIC test part.
type Group struct {
	ID    string
	Title string
}

// Parts is the static enumeration of the seven TOEIC parts.
var Parts = []Group{
	{ID: "1", Title: "Part 1: Photographs"},
	{ID: "2", Title: "Part 2: Question-Response"},
	{ID: "3", Title: "Part 3: Short Conversations"},
	{ID: "4", Title: "Part 4: Talks"},
	{ID: "5", Title: "Part 5: Incomplete Sentences"},
	{ID: "6", Title: "Part 6: Text Completion"},
	{ID: "7", Title: "Part 7: Reading Comprehension"},
}

// partRange returns the inclusive part-number range a practice type covers.
func partRange(t PracticeType) (lo, hi int, ok bool) {
	switch t {
	case Listening:
		return 1, 4, true
	case Reading:
		return 5, 7, true
	default:
		return 0, 0, false
	}
}

// GroupsFor filters Parts down to the groups belonging to t. Types with
// no assigned range yield an empty slice.
func GroupsFor(t PracticeType) []Group {
	lo, hi, ok := partRange(t)
	if !ok {
		return nil
	}
	var out []Group
	for _, g := range Parts {
		n, err := strconv.Atoi(g.ID)
		if err != nil {
			continue
		}
		if n >= lo && n <= hi {
			out = append(out, g)
		}
	}
	return out
}

// SkillForPart maps a part number to "listening" or "reading", or ""
// for numbers outside 1..7.
func SkillForPart(part int) PracticeType {
	switch {
	case part >= 1 && part <= 4:
		return Listening
	case part >= 5 && part <= 7:
		return Reading
	default:
		return ""
	}
}
