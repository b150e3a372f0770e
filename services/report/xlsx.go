package reportsvc

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
)

// ProgressReport is the weekly progress of a course level, one row per learner.
type ProgressReport struct {
	Course   content.Course
	Level    content.Level
	Weeks    []content.Week
	Learners []user.User
	Records  []progress.Record
}

// Header returns the column titles: the learner, one status column per week, then the totals.
func (r ProgressReport) Header() []string {
	header := []string{"Username", "Name", "Email"}
	for _, w := range r.Weeks {
		header = append(header, fmt.Sprintf("Week %d: %s", w.Number, w.Topic))
	}
	return append(header, "Weeks completed", "Average quiz score")
}

// Rows returns one row per learner, in the order of Learners. A week never opened is
// reported the way the learner's week listing shows it.
func (r ProgressReport) Rows() [][]interface{} {
	byUser := make(map[string]map[int]progress.Record, len(r.Learners))
	for _, rec := range r.Records {
		if byUser[rec.UserID] == nil {
			byUser[rec.UserID] = make(map[int]progress.Record)
		}
		byUser[rec.UserID][rec.Week] = rec
	}

	rows := make([][]interface{}, 0, len(r.Learners))
	for _, usr := range r.Learners {
		row := []interface{}{usr.Username, usr.Name, usr.Email}
		learner := progress.Learner{UserID: usr.ID, Name: usr.Name, Email: usr.Email}
		var completed, scored, total int
		for _, w := range r.Weeks {
			rec, prev := recordAt(byUser[usr.ID], w.Number), recordAt(byUser[usr.ID], w.Number-1)
			row = append(row, string(progress.WeekStatus(w.Number, learner, rec, prev)))
			if rec == nil {
				continue
			}
			if rec.IsCompleted() {
				completed++
			}
			for _, qs := range rec.QuizScores {
				total += qs.Score
				scored++
			}
		}
		row = append(row, completed)
		if scored > 0 {
			row = append(row, total/scored)
		} else {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return rows
}

func recordAt(byWeek map[int]progress.Record, week int) *progress.Record {
	rec, ok := byWeek[week]
	if !ok {
		return nil
	}
	return &rec
}

// WriteXLSX writes the report as a single sheet workbook.
func (r ProgressReport) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("%s (%s)", r.Course.Title, r.Level)); err != nil {
		return errors.Wrap(err, "writing title")
	}
	header := r.Header()
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A2", &headerRow); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, row := range r.Rows() {
		row := row
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+3), &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+3)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return errors.Wrap(err, "sizing columns")
	}
	if err = f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return errors.Wrap(err, "sizing columns")
	}

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// ReadXLSX returns the cells of a workbook written by WriteXLSX, title and header rows included.
func ReadXLSX(rd io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	return rows, errors.Wrap(err, "reading rows")
}
