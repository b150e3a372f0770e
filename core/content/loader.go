package content

import (
	"encoding/json"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
)

var weekFileRegex = regexp.MustCompile(`^week_(\d+)\.(json|ya?ml)$`)

// Documents as authored. Several shapes coexist:
// `quizzes` may be a list of quizzes or a flat list of questions, `quiz` may hold a single quiz,
// `title` is an alias of `topic` and `correctAnswer` an alias of `answer`.
type (
	courseDocument struct {
		Title       string `json:"title" yaml:"title"`
		Category    string `json:"category" yaml:"category"`
		Description string `json:"description" yaml:"description"`
	}

	weekDocument struct {
		Topic        string         `json:"topic" yaml:"topic"`
		Title        string         `json:"title" yaml:"title"`
		Summary      string         `json:"summary" yaml:"summary"`
		WhyItMatters string         `json:"why_it_matters" yaml:"why_it_matters"`
		Materials    Materials      `json:"materials" yaml:"materials"`
		Assignments  []Assignment   `json:"assignments" yaml:"assignments"`
		Quizzes      []quizDocument `json:"quizzes" yaml:"quizzes"`
		Quiz         *quizDocument  `json:"quiz" yaml:"quiz"`
	}

	quizDocument struct {
		Title     string             `json:"title" yaml:"title"`
		Questions []questionDocument `json:"questions" yaml:"questions"`

		// set when the entry is itself a question
		questionDocument `yaml:",inline"`
	}

	questionDocument struct {
		Question      string      `json:"question" yaml:"question"`
		Type          string      `json:"type" yaml:"type"`
		Options       []string    `json:"options" yaml:"options"`
		Answer        interface{} `json:"answer" yaml:"answer"`
		CorrectAnswer interface{} `json:"correctAnswer" yaml:"correctAnswer"`
		Explanation   string      `json:"explanation" yaml:"explanation"`
	}
)

// Loader reads a catalog from a directory tree laid out as
//
//	<course>/course.(json|yaml|yml)         optional course metadata
//	<course>/<level>/week_<N>.(json|yaml|yml)
//
// Every week document is validated; week numbers of a level must run from 1 without gaps.
type Loader struct {
	validate *validator.Validate
}

func NewLoader(validate *validator.Validate) *Loader {
	return &Loader{validate: validate}
}

func (l *Loader) Load(fsys fs.FS) (*Catalog, error) {
	cat := newCatalog()

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading content root")
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ce, err := l.loadCourse(fsys, entry.Name())
		if err != nil {
			return nil, err
		}
		if len(ce.weeks) == 0 {
			continue
		}
		cat.add(ce)
	}
	return cat, nil
}

func (l *Loader) loadCourse(fsys fs.FS, dir string) (*courseEntry, error) {
	id := core.CleanString(dir, true /* lower */)
	ce := &courseEntry{
		Course: Course{ID: id, Title: titleFromID(dir)},
		weeks:  make(map[Level][]Week),
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading course %s", dir)
	}
	levelDirs := make(map[Level]string)
	for _, entry := range entries {
		name := entry.Name()
		fp := path.Join(dir, name)

		if !entry.IsDir() {
			if strings.TrimSuffix(name, path.Ext(name)) != "course" || !isDocumentExt(path.Ext(name)) {
				continue
			}
			var doc courseDocument
			if err := decodeFile(fsys, fp, &doc); err != nil {
				return nil, err
			}
			if t := core.CleanString(doc.Title); t != "" {
				ce.Title = t
			}
			ce.Category = core.CleanString(doc.Category)
			ce.Description = core.CleanString(doc.Description)
			continue
		}

		level := NormalizeLevel(name)
		if other, ok := levelDirs[level]; ok {
			return nil, errors.Errorf("%s: level %q is defined twice (%s, %s)", dir, level, other, name)
		}
		levelDirs[level] = name

		weeks, err := l.loadLevel(fsys, fp, id, level)
		if err != nil {
			return nil, err
		}
		if len(weeks) > 0 {
			ce.weeks[level] = weeks
			ce.Levels = append(ce.Levels, level)
		}
	}

	sort.Slice(ce.Levels, func(i, j int) bool {
		ri, rj := levelRank(ce.Levels[i]), levelRank(ce.Levels[j])
		if ri != rj {
			return ri < rj
		}
		return ce.Levels[i] < ce.Levels[j]
	})
	return ce, nil
}

func (l *Loader) loadLevel(fsys fs.FS, dir, courseID string, level Level) ([]Week, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading level %s", dir)
	}

	byNumber := make(map[int]Week)
	for _, entry := range entries {
		m := weekFileRegex.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		fp := path.Join(dir, entry.Name())
		if _, ok := byNumber[n]; ok {
			return nil, errors.Errorf("%s: week %d is defined twice", fp, n)
		}

		week, err := l.loadWeek(fsys, fp)
		if err != nil {
			return nil, err
		}
		week.CourseID = courseID
		week.Level = level
		week.Number = n
		if err := l.validate.Struct(week); err != nil {
			return nil, errors.Wrapf(err, "%s", fp)
		}
		byNumber[n] = week
	}

	weeks := make([]Week, 0, len(byNumber))
	for n := 1; n <= len(byNumber); n++ {
		week, ok := byNumber[n]
		if !ok {
			return nil, errors.Errorf("%s: week %d is missing", dir, n)
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

func (l *Loader) loadWeek(fsys fs.FS, fp string) (Week, error) {
	var doc weekDocument
	if err := decodeFile(fsys, fp, &doc); err != nil {
		return Week{}, err
	}

	week := Week{
		Topic:        core.CleanString(doc.Topic),
		Summary:      core.CleanString(doc.Summary),
		WhyItMatters: core.CleanString(doc.WhyItMatters),
		Materials:    doc.Materials,
		Assignments:  doc.Assignments,
	}
	if week.Topic == "" {
		week.Topic = core.CleanString(doc.Title)
	}
	if week.Materials.Videos == nil {
		week.Materials.Videos = []Link{}
	}
	if week.Materials.Textbooks == nil {
		week.Materials.Textbooks = []Link{}
	}
	if week.Materials.Labs == nil {
		week.Materials.Labs = []Link{}
	}
	if week.Assignments == nil {
		week.Assignments = []Assignment{}
	}

	quizzes, err := buildQuizzes(doc)
	if err != nil {
		return Week{}, errors.Wrapf(err, "%s", fp)
	}
	week.Quizzes = quizzes
	return week, nil
}

func buildQuizzes(doc weekDocument) ([]Quiz, error) {
	docs := doc.Quizzes
	if doc.Quiz != nil {
		docs = append(docs, *doc.Quiz)
	}

	quizzes := make([]Quiz, 0, len(docs))
	var flat []questionDocument
	for _, qd := range docs {
		if len(qd.Questions) == 0 && qd.Question != "" {
			flat = append(flat, qd.questionDocument)
			continue
		}
		questions, err := buildQuestions(len(quizzes), qd.Questions)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, Quiz{Title: core.CleanString(qd.Title), Questions: questions})
	}

	// a flat list of questions makes up one quiz
	if len(flat) > 0 {
		questions, err := buildQuestions(len(quizzes), flat)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, Quiz{Questions: questions})
	}
	return quizzes, nil
}

func buildQuestions(quizIdx int, docs []questionDocument) ([]quiz.Question, error) {
	questions := make([]quiz.Question, 0, len(docs))
	for i, qd := range docs {
		qtype := quiz.Type(core.CleanString(qd.Type, true /* lower */))
		answer := qd.Answer
		if answer == nil {
			answer = qd.CorrectAnswer
		}
		if qtype == "" {
			switch {
			case len(qd.Options) > 0:
				qtype = quiz.MultipleChoice
			case isBool(answer):
				qtype = quiz.TrueFalse
			default:
				qtype = quiz.FillInTheBlank
			}
		}

		key, err := quiz.ParseKey(qtype, qd.Options, answer)
		if err != nil {
			return nil, errors.Wrapf(err, "quiz %d, question %d", quizIdx, i)
		}
		questions = append(questions, quiz.Question{
			Prompt:      core.CleanString(qd.Question),
			Type:        qtype,
			Options:     qd.Options,
			Key:         key,
			Explanation: core.CleanString(qd.Explanation),
		})
	}
	return questions, nil
}

func decodeFile(fsys fs.FS, fp string, dst interface{}) error {
	data, err := fs.ReadFile(fsys, fp)
	if err != nil {
		return errors.Wrapf(err, "reading %s", fp)
	}
	switch path.Ext(fp) {
	case ".json":
		err = json.Unmarshal(data, dst)
	default:
		err = yaml.Unmarshal(data, dst)
	}
	return errors.Wrapf(err, "decoding %s", fp)
}

func isDocumentExt(ext string) bool {
	return ext == ".json" || ext == ".yaml" || ext == ".yml"
}

func isBool(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}
