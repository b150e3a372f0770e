package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/Damian-Sonwa/Academician-hub-sub001/client"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	logsvc "github.com/Damian-Sonwa/Academician-hub-sub001/services/logger"
)

var readPasswordFunc = term.ReadPassword // mockable

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "LEARNER : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	uname := flag.String("username", "", "Your username or email. The password will be prompted next.")
	courseID := flag.String("course", "", "The course to follow.")
	level := flag.String("level", string(content.LevelBeginner), "The course level.")
	baseURL := flag.String("api", conf.Client.BaseURL, "The API base URL.")
	flag.Parse()
	if *uname == "" || *courseID == "" {
		flag.Usage()
		os.Exit(2)
	}

	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		logger.Fatal("reading password", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := client.OptionsFromConfig(conf)
	opts.BaseURL = *baseURL
	sess := client.NewSession(client.New(opts))
	if err = sess.Connect(ctx, *uname, string(pwd)); err != nil {
		fmt.Println(notification(err))
		os.Exit(1)
	}
	defer sess.Disconnect()
	fmt.Printf("Signed in as %s.\n", sess.Username())

	newLearner(sess, os.Stdin, os.Stdout, *courseID, content.Level(*level)).run(ctx)
}
