package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garnizeh/citizenhub/internal/auth"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash [credential]",
		Short: "Print the bcrypt digest of a credential",
		Long: `Print the bcrypt digest of a credential.

The credential is read from the first line of stdin when no argument is given,
which keeps it out of the shell history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var credential string
			if len(args) == 1 {
				credential = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no credential given")
				}
				credential = strings.TrimRight(line, "\r\n")
			}
			hash, err := auth.HashCredential(credential)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
