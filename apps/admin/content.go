package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/pkg/errors"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
)

var openContentFunc = func(dir string) fs.FS { return os.DirFS(dir) } // mockable

func (cli *commandLine) loadContent(dir string) (*content.Store, error) {
	store, err := content.NewStore(openContentFunc(dir), cli.validate)
	return store, errors.Wrapf(err, "loading content from %s", dir)
}

// lintContent loads every course under dir and prints what was found.
func (cli *commandLine) lintContent(dir string) error {
	store, err := cli.loadContent(dir)
	if err != nil {
		return err
	}

	var weeks, quizzes int
	for _, course := range store.Courses() {
		_, _ = fmt.Fprintf(cli.out, "%s (%s)\n", course.ID, course.Title)
		for _, level := range course.Levels {
			lw, err := store.Weeks(course.ID, level)
			if err != nil {
				return err
			}
			var nQuizzes int
			for _, w := range lw {
				nQuizzes += len(w.Quizzes)
			}
			_, _ = fmt.Fprintf(cli.out, "  %s: %d weeks, %d quizzes\n", level, len(lw), nQuizzes)
			weeks += len(lw)
			quizzes += nQuizzes
		}
	}
	_, _ = fmt.Fprintf(cli.out, "ok: %d courses, %d weeks, %d quizzes\n", len(store.Courses()), weeks, quizzes)
	return nil
}
