package main

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/drive"
	authsvc "github.com/trezcool/darasa/services/auth"
)

type commandLine struct {
	conf   *core.Config
	svc    *classroom.Service
	drive  drive.Transport
	tokens *authsvc.Source
	log    core.Logger
	out    io.Writer
}

var (
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
	faint   = color.New(color.Faint)
)

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "darasa",
		Short:         "Manage Google Classroom courses, submissions and grades from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cli.authCommand(),
		cli.courseCommand(),
		cli.submissionCommand(),
		cli.driveCommand(),
	)
	return root
}

// courseID resolves the --course flag (or the configured default course)
// to a canonical course id; the flag accepts an id or a name fragment.
func (cli *commandLine) courseID(ctx context.Context, identifier string) (string, error) {
	if identifier == "" {
		identifier = cli.conf.CourseID
	}
	if identifier == "" {
		return "", errors.New("no course given: pass --course or configure COURSEID")
	}
	return cli.svc.ResolveCourse(ctx, identifier)
}

// workID resolves an assignment argument (id or title fragment) within a course.
func (cli *commandLine) workID(ctx context.Context, courseID, identifier string) (string, error) {
	return cli.svc.ResolveCourseWork(ctx, courseID, identifier)
}
