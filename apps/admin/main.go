package main

import (
	"log"
	"os"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
	logsvc "github.com/Damian-Sonwa/Academician-hub-sub001/services/logger"
	"github.com/Damian-Sonwa/Academician-hub-sub001/storage/database"
	sqlxrepos "github.com/Damian-Sonwa/Academician-hub-sub001/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	content.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:         db,
		usrSvc:     user.NewService(sqlxrepos.NewUserRepository(db), validate),
		recordRepo: sqlxrepos.NewProgressRepository(db),
		validate:   validate,
		logger:     logger,
		contentDir: conf.Content.Dir,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
