package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify-crm",
	Short: "Check that Salesforce has every field the publisher writes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sfCRM, err := initCRM()
		if err != nil {
			return err
		}
		if err := sfCRM.Verify(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Salesforce schema OK.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
