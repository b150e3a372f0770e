// Package content holds the read-only course catalog: courses, their levels and weekly content,
// loaded from declarative week documents.
package content

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
)

var (
	ErrCourseNotFound = core.NewNotFoundError("course")
	ErrLevelNotFound  = core.NewNotFoundError("course level")
	ErrWeekNotFound   = core.NewNotFoundError("week")
)

// Level is a normalized proficiency level.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelSecondary    Level = "secondary"
)

var levelAliases = map[string]Level{
	"basic": LevelBeginner,
}

// NormalizeLevel lowers s and resolves aliases ("Basic" is "beginner").
// Unknown levels are kept lowered so that custom levels still resolve.
func NormalizeLevel(s string) Level {
	l := core.CleanString(s, true /* lower */)
	if alias, ok := levelAliases[l]; ok {
		return alias
	}
	return Level(l)
}

func levelRank(l Level) int {
	switch l {
	case LevelBeginner:
		return 0
	case LevelIntermediate:
		return 1
	case LevelAdvanced:
		return 2
	case LevelSecondary:
		return 3
	default:
		return 4
	}
}

type Course struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Levels      []Level `json:"levels"`
}

type Link struct {
	Title string `json:"title" validate:"notblank"`
	URL   string `json:"url" validate:"required,url"`
}

type Materials struct {
	Videos    []Link `json:"videos" validate:"dive"`
	Textbooks []Link `json:"textbooks" validate:"dive"`
	Labs      []Link `json:"labs" validate:"dive"`
}

type Assignment struct {
	Title       string   `json:"title" validate:"notblank"`
	Description string   `json:"description,omitempty"`
	Tasks       []string `json:"tasks,omitempty" validate:"dive,notblank"`
}

type Quiz struct {
	Title     string          `json:"title,omitempty"`
	Questions []quiz.Question `json:"questions" validate:"required,min=1,dive"`
}

// Week is one week of a course level. Assignments and Quizzes are addressed by their index.
type Week struct {
	CourseID     string       `json:"course_id"`
	Level        Level        `json:"level"`
	Number       int          `json:"week" validate:"min=1"`
	Topic        string       `json:"topic" validate:"notblank"`
	Summary      string       `json:"summary"`
	WhyItMatters string       `json:"why_it_matters"`
	Materials    Materials    `json:"materials"`
	Assignments  []Assignment `json:"assignments" validate:"dive"`
	Quizzes      []Quiz       `json:"quizzes" validate:"dive"`
}

// IsEmpty reports whether the week has nothing to complete.
func (w Week) IsEmpty() bool {
	return len(w.Assignments) == 0 && len(w.Quizzes) == 0
}

// titleFromID turns a course directory name such as "data_science" into "Data Science".
func titleFromID(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
