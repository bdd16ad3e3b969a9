package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (cli *commandLine) courseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Inspect courses and their assignments",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, err := cli.svc.Courses(cmd.Context())
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				fmt.Fprintln(cli.out, "No courses found or insufficient permissions.")
				return nil
			}
			for _, c := range courses {
				fmt.Fprintf(cli.out, "%s: %s\n", faint.Sprint(c.ID), c.Name)
			}
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get [COURSE]",
		Short: "Show the details of a course (id or name fragment; defaults to the configured course)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var identifier string
			if len(args) > 0 {
				identifier = args[0]
			}
			id, err := cli.courseID(cmd.Context(), identifier)
			if err != nil {
				return err
			}
			course, err := cli.svc.Course(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "ID:      %s\n", course.ID)
			fmt.Fprintf(cli.out, "Name:    %s\n", course.Name)
			if course.Section != "" {
				fmt.Fprintf(cli.out, "Section: %s\n", course.Section)
			}
			if course.Room != "" {
				fmt.Fprintf(cli.out, "Room:    %s\n", course.Room)
			}
			fmt.Fprintf(cli.out, "State:   %s\n", course.CourseState)
			if course.AlternateLink != "" {
				fmt.Fprintf(cli.out, "Link:    %s\n", course.AlternateLink)
			}
			return nil
		},
	}

	current := &cobra.Command{
		Use:   "current",
		Short: "Show the course configured as default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cli.conf.CourseID == "" {
				return fmt.Errorf("COURSEID is not configured")
			}
			fmt.Fprintf(cli.out, "Current course ID: %s\n", cli.conf.CourseID)
			return get.RunE(cmd, []string{cli.conf.CourseID})
		},
	}

	var workCourse string
	work := &cobra.Command{
		Use:   "work",
		Short: "List the assignments of a course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cli.courseID(cmd.Context(), workCourse)
			if err != nil {
				return err
			}
			work, err := cli.svc.CourseWork(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(work) == 0 {
				fmt.Fprintln(cli.out, "No coursework found for this course.")
				return nil
			}
			for _, w := range work {
				fmt.Fprintf(cli.out, "%s: %s\n", faint.Sprint(w.ID), w.Title)
			}
			return nil
		},
	}
	work.Flags().StringVarP(&workCourse, "course", "c", "", "course id or name fragment")

	var subsCourse string
	submissions := &cobra.Command{
		Use:   "submissions ASSIGNMENT",
		Short: "List the submissions of an assignment (ids only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := cli.courseID(cmd.Context(), subsCourse)
			if err != nil {
				return err
			}
			workID, err := cli.workID(cmd.Context(), courseID, args[0])
			if err != nil {
				return err
			}
			subs, err := cli.svc.Submissions(cmd.Context(), courseID, workID)
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Fprintln(cli.out, "No submissions found for this assignment.")
				return nil
			}
			for _, s := range subs {
				fmt.Fprintf(cli.out, "%s: %s\n", faint.Sprint(s.ID), s.UserID)
			}
			return nil
		},
	}
	submissions.Flags().StringVarP(&subsCourse, "course", "c", "", "course id or name fragment")

	cmd.AddCommand(list, get, current, work, submissions)
	return cmd
}
