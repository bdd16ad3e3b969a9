package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var readPasswordFunc = term.ReadPassword // mockable

func (cli *commandLine) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API credentials",
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Run the OAuth 2.0 authentication flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cli.tokens.UsesServiceAccount() && cli.conf.Google.ClientSecret == "" && cli.conf.Google.ClientID != "" {
				fmt.Fprint(cli.out, "Enter client secret:")
				secret, err := readPasswordFunc(int(syscall.Stdin))
				fmt.Fprintln(cli.out)
				if err != nil {
					return err
				}
				cli.conf.Google.ClientSecret = string(secret)
			}
			if err := cli.tokens.Login(cmd.Context()); err != nil {
				return err
			}
			success.Fprintln(cli.out, "Authentication successful! You can now use the API.")
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete stored credentials to force re-authentication",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.tokens.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cli.out, "Authentication credentials have been reset.")
			return nil
		},
	}

	cmd.AddCommand(login, reset)
	return cmd
}
