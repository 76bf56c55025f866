// Package stats aggregates graded results into per-topic and per-skill
// performance.
package stats

import (
	"cmp"
	"slices"

	"github.com/toeicpractice/toeic/internal/practice"
)

// TopTopics is the number of topics kept in a Summary.
const TopTopics = 5

// Counts tallies answers.
type Counts struct {
	Correct   int
	Incorrect int
	Skipped   int
}

// Attempts is the number of answered (not skipped) questions.
func (c Counts) Attempts() int { return c.Correct + c.Incorrect }

// Accuracy returns Correct/Attempts, or 0 with no attempts.
func (c Counts) Accuracy() float64 {
	if c.Attempts() == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Attempts())
}

func (c *Counts) add(a practice.UserAnswer) {
	switch {
	case a.UserAnswer == "":
		c.Skipped++
	case a.Correct:
		c.Correct++
	default:
		c.Incorrect++
	}
}

// TopicStat is the performance on one topic.
type TopicStat struct {
	Name string
	Counts
}

// SkillStat is the performance on listening or reading.
type SkillStat struct {
	Skill practice.PracticeType
	Counts
}

// Summary is the aggregated view shown on the statistics screen.
type Summary struct {
	Results int
	Topics  []TopicStat // at most TopTopics, most attempted first
	Skills  []SkillStat // listening then reading, always both
	Total   Counts
}

// Share returns the fraction of all attempts that belong to skill.
func (s Summary) Share(skill practice.PracticeType) float64 {
	if s.Total.Attempts() == 0 {
		return 0
	}
	for _, sk := range s.Skills {
		if sk.Skill == skill {
			return float64(sk.Attempts()) / float64(s.Total.Attempts())
		}
	}
	return 0
}

// Summarize aggregates results. Group answers are expanded into their
// sub-answers; each leaf counts once toward its skill and once toward every
// topic it lists.
func Summarize(results []practice.Result) Summary {
	topics := make(map[string]*TopicStat)
	skills := map[practice.PracticeType]*Counts{
		practice.Listening: {},
		practice.Reading:   {},
	}
	var total Counts

	for _, r := range results {
		for _, a := range r.UserAnswers {
			for _, leaf := range leaves(a) {
				total.add(leaf)

				if c, ok := skills[practice.SkillForPart(leaf.PartNum)]; ok {
					c.add(leaf)
				}

				for _, t := range leaf.ListTopics {
					if t.Name == "" {
						continue
					}
					ts, ok := topics[t.Name]
					if !ok {
						ts = &TopicStat{Name: t.Name}
						topics[t.Name] = ts
					}
					ts.add(leaf)
				}
			}
		}
	}

	out := Summary{Results: len(results), Total: total}
	for _, ts := range topics {
		out.Topics = append(out.Topics, *ts)
	}
	slices.SortFunc(out.Topics, func(a, b TopicStat) int {
		if c := cmp.Compare(b.Attempts(), a.Attempts()); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(out.Topics) > TopTopics {
		out.Topics = out.Topics[:TopTopics]
	}

	out.Skills = []SkillStat{
		{Skill: practice.Listening, Counts: *skills[practice.Listening]},
		{Skill: practice.Reading, Counts: *skills[practice.Reading]},
	}
	return out
}

// leaves flattens a group answer into its sub-answers. Sub-answers inherit
// the parent's part and topics when they carry none.
func leaves(a practice.UserAnswer) []practice.UserAnswer {
	if len(a.SubUserAnswer) == 0 {
		return []practice.UserAnswer{a}
	}
	out := make([]practice.UserAnswer, 0, len(a.SubUserAnswer))
	for _, sub := range a.SubUserAnswer {
		if sub.PartNum == 0 {
			sub.PartNum = a.PartNum
		}
		if len(sub.ListTopics) == 0 {
			sub.ListTopics = a.ListTopics
		}
		out = append(out, leaves(sub)...)
	}
	return out
}
