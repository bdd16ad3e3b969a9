package main

import (
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	authsvc "github.com/trezcool/darasa/services/auth"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/googleapi"
)

// build is injected at compile time
var build = "develop"

func main() {
	conf := core.NewConfig(build)

	std := log.New(os.Stderr, "", 0)
	var logger core.Logger
	if !conf.Debug && conf.RollbarToken != "" {
		rl := logsvc.NewRollbarLogger(std, conf)
		rl.Enable(true)
		logger = rl
	} else {
		logger = logsvc.NewConsoleLogger(std, conf.Debug)
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	tokens := authsvc.NewSource(conf, logger)
	client := googleapi.NewClient(conf, tokens)
	transport := googleapi.NewDriveTransport(client)
	svc := classroom.NewService(
		googleapi.NewCourseRepository(client),
		googleapi.NewCourseWorkRepository(client),
		googleapi.NewSubmissionRepository(client),
		googleapi.NewStudentRepository(client),
		classroom.NewMaterializer(transport, logger),
		validate,
		translator,
		logger,
	)

	cli := &commandLine{
		conf:   conf,
		svc:    svc,
		drive:  transport,
		tokens: tokens,
		log:    logger,
		out:    os.Stdout,
	}
	if err := cli.rootCommand().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
