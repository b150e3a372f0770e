package content

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
)

var (
	minOptions = 2

	mcOptionsTag  = "mcoptions"
	mcOptionsText = fmt.Sprintf("multiple-choice questions need at least %d options", minOptions)

	answerKeyTag  = "answerkey"
	answerKeyText = "answer does not match the question type or its options"
)

// InitValidators registers the week document validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(questionStructValidation, quiz.Question{})
	core.RegisterCustomTranslation(validate, translator, mcOptionsTag, mcOptionsText)
	core.RegisterCustomTranslation(validate, translator, answerKeyTag, answerKeyText)
}

// questionStructValidation checks the options and the answer key against the question type.
func questionStructValidation(sl validator.StructLevel) {
	q, ok := sl.Current().Interface().(quiz.Question)
	if !ok {
		return
	}
	if q.Type == quiz.MultipleChoice && len(q.Options) < minOptions {
		sl.ReportError(q.Options, "options", "Options", mcOptionsTag, "")
	}
	if !q.Key.IsSet() || !q.Accepts(q.Key) || (q.Type == quiz.FillInTheBlank && strings.TrimSpace(q.Key.Text()) == "") {
		sl.ReportError(q.Key, "answer", "Key", answerKeyTag, "")
	}
}
