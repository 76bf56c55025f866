package practice

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PracticeType selects which TOEIC skill a practice list covers.
type PracticeType string

const (
	Listening  PracticeType = "listening"
	Reading    PracticeType = "reading"
	Vocabulary PracticeType = "vocabulary"
	Grammar    PracticeType = "grammar"
)

// ParsePracticeType converts a user-supplied name into a PracticeType.
func ParsePracticeType(s string) (PracticeType, error) {
	switch t := PracticeType(strings.ToLower(strings.TrimSpace(s))); t {
	case Listening, Reading, Vocabulary, Grammar:
		return t, nil
	default:
		return "", fmt.Errorf("unknown practice type %q", s)
	}
}

// DisplayName returns a capitalized label for menus and headers.
func (t PracticeType) DisplayName() string {
	switch t {
	case Listening:
		return "Listening"
	case Reading:
		return "Reading"
	case Vocabulary:
		return "Vocabulary"
	case Grammar:
		return "Grammar"
	default:
		return string(t)
	}
}

// Difficulty is the API's numeric difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "EASY"
	case Medium:
		return "MEDIUM"
	case Hard:
		return "HARD"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// UnmarshalJSON accepts both the numeric form (0..2) and the enum name.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Difficulty(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("difficulty: %w", err)
	}
	switch strings.ToUpper(s) {
	case "EASY", "":
		*d = Easy
	case "MEDIUM":
		*d = Medium
	case "HARD":
		*d = Hard
	default:
		return fmt.Errorf("difficulty: unknown value %q", s)
	}
	return nil
}

// QuestionType distinguishes standalone questions from question groups.
type QuestionType string

const (
	QuestionSingle      QuestionType = "single"
	QuestionGroup       QuestionType = "group"
	QuestionSubquestion QuestionType = "subquestion"
)

// ResourceType is the kind of media attached to a question.
type ResourceType string

const (
	ResourceParagraph ResourceType = "paragraph"
	ResourceImage     ResourceType = "image"
	ResourceAudio     ResourceType = "audio"
)

// Resource is a paragraph, image or audio clip attached to a question.
type Resource struct {
	Type    ResourceType `json:"type"`
	Content string       `json:"content"`
}

// Topic is a grammar or content topic a question exercises.
type Topic struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Solution     string `json:"solution,omitempty"`
	OverallSkill string `json:"overallSkill,omitempty"`
}

// Question is a single practice item. Group questions carry their
// individual questions in SubQuestions.
type Question struct {
	ID            string       `json:"id"`
	QuestionNum   int          `json:"questionNum"`
	PartNum       int          `json:"partNum"`
	Type          QuestionType `json:"type"`
	SubQuestions  []Question   `json:"subQuestions,omitempty"`
	Content       string       `json:"content"`
	Difficulty    Difficulty   `json:"difficulty"`
	Topic         []Topic      `json:"topic,omitempty"`
	Resources     []Resource   `json:"resources,omitempty"`
	Transcript    string       `json:"transcript,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
	Answers       []string     `json:"answers,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
}

// UserAnswer is one answered question inside a Result.
type UserAnswer struct {
	ID            string       `json:"id,omitempty"`
	QuestionID    string       `json:"questionId"`
	ListTopics    []Topic      `json:"listTopics,omitempty"`
	UserAnswer    string       `json:"userAnswer"`
	Solution      string       `json:"solution,omitempty"`
	Correct       bool         `json:"correct"`
	TimeSpent     int          `json:"timeSpent"`
	QuestionNum   int          `json:"questionNum"`
	PartNum       int          `json:"partNum"`
	Type          QuestionType `json:"type,omitempty"`
	SubUserAnswer []UserAnswer `json:"subUserAnswer,omitempty"`
	Content       string       `json:"content,omitempty"`
	Difficulty    Difficulty   `json:"difficulty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
}

// Result is a graded submission: a full test, a practice set, or a
// single question (Type "QUESTION").
type Result struct {
	ID                   string       `json:"id"`
	TestID               string       `json:"testId,omitempty"`
	TotalTime            int          `json:"totalTime"`
	TotalReadingScore    int          `json:"totalReadingScore"`
	TotalListeningScore  int          `json:"totalListeningScore"`
	TotalCorrectAnswer   int          `json:"totalCorrectAnswer"`
	TotalIncorrectAnswer int          `json:"totalIncorrectAnswer"`
	TotalSkipAnswer      int          `json:"totalSkipAnswer"`
	Type                 string       `json:"type"`
	Parts                string       `json:"parts,omitempty"`
	UserAnswers          []UserAnswer `json:"userAnswers"`
}
