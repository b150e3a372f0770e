package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/services/report"
)

// report writes the progress of every student on a course level to an xlsx file.
func (cli *commandLine) report(courseID string, level content.Level, out string) error {
	store, err := cli.loadContent(cli.contentDir)
	if err != nil {
		return err
	}
	progressSvc := progress.NewService(cli.recordRepo, store, nil, cli.logger)

	rep, err := reportsvc.BuildProgressReport(context.Background(), store, progressSvc, cli.usrSvc, courseID, level)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "creating report file")
	}
	if err = rep.WriteXLSX(f); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing report file")
	}
	_, _ = fmt.Fprintf(cli.out, "%d learners written to %s\n", len(rep.Learners), out)
	return nil
}
