package quiz

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the kind of value an Answer holds.
type Kind int

const (
	KindUnset Kind = iota
	KindChoice
	KindTruth
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindChoice:
		return "choice"
	case KindTruth:
		return "boolean"
	case KindText:
		return "text"
	default:
		return "unset"
	}
}

// Answer is either a question's answer key or a learner's submitted value:
// an option index, a boolean or a piece of text.
// It encodes to JSON as the bare value (null when unset).
type Answer struct {
	kind   Kind
	choice int
	truth  bool
	text   string
}

func Choice(idx int) Answer   { return Answer{kind: KindChoice, choice: idx} }
func Truth(b bool) Answer     { return Answer{kind: KindTruth, truth: b} }
func Text(s string) Answer    { return Answer{kind: KindText, text: s} }
func (a Answer) Kind() Kind   { return a.kind }
func (a Answer) IsSet() bool  { return a.kind != KindUnset }
func (a Answer) Choice() int  { return a.choice }
func (a Answer) Truth() bool  { return a.truth }
func (a Answer) Text() string { return a.text }

func (a Answer) String() string {
	switch a.kind {
	case KindChoice:
		return strconv.Itoa(a.choice)
	case KindTruth:
		return strconv.FormatBool(a.truth)
	case KindText:
		return a.text
	default:
		return ""
	}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case KindChoice:
		return json.Marshal(a.choice)
	case KindTruth:
		return json.Marshal(a.truth)
	case KindText:
		return json.Marshal(a.text)
	default:
		return []byte("null"), nil
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	ans, err := FromValue(v)
	if err != nil {
		return err
	}
	*a = ans
	return nil
}

func (a *Answer) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	ans, err := FromValue(v)
	if err != nil {
		return err
	}
	*a = ans
	return nil
}

// FromValue converts a decoded JSON or YAML scalar to an Answer.
// Integral numbers are choices, booleans are truths and strings are text.
func FromValue(v interface{}) (Answer, error) {
	switch val := v.(type) {
	case nil:
		return Answer{}, nil
	case bool:
		return Truth(val), nil
	case string:
		return Text(val), nil
	case int:
		return Choice(val), nil
	case int64:
		return Choice(int(val)), nil
	case uint64:
		return Choice(int(val)), nil
	case float64:
		if val != math.Trunc(val) {
			return Answer{}, errors.Errorf("answer %v is not an option index", val)
		}
		return Choice(int(val)), nil
	default:
		return Answer{}, errors.Errorf("unsupported answer value %v (%T)", v, v)
	}
}

// ParseKey builds the answer key of a question of type qtype from a loosely typed value.
// Authored content is not consistent: multiple-choice keys may name the option instead of its index,
// and true/false keys may be strings.
func ParseKey(qtype Type, options []string, v interface{}) (Answer, error) {
	ans, err := FromValue(v)
	if err != nil {
		return Answer{}, err
	}

	switch qtype {
	case MultipleChoice:
		switch ans.kind {
		case KindChoice:
			return ans, nil
		case KindText:
			txt := strings.TrimSpace(ans.text)
			for i, opt := range options {
				if strings.EqualFold(strings.TrimSpace(opt), txt) {
					return Choice(i), nil
				}
			}
			if idx, err := strconv.Atoi(txt); err == nil {
				return Choice(idx), nil
			}
			return Answer{}, errors.Errorf("answer %q is not one of the options", ans.text)
		}
	case TrueFalse:
		switch ans.kind {
		case KindTruth:
			return ans, nil
		case KindText:
			b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(ans.text)))
			if err != nil {
				return Answer{}, errors.Errorf("answer %q is not a boolean", ans.text)
			}
			return Truth(b), nil
		}
	case FillInTheBlank:
		switch ans.kind {
		case KindText:
			return ans, nil
		case KindChoice:
			return Text(strconv.Itoa(ans.choice)), nil
		case KindTruth:
			return Text(strconv.FormatBool(ans.truth)), nil
		}
	default:
		return Answer{}, errors.Errorf("unknown question type %q", qtype)
	}
	return Answer{}, errors.Errorf("missing answer for %s question", qtype)
}
