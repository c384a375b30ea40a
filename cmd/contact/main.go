package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/miravision/website/internal/contactform"
	"github.com/miravision/website/internal/version"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "contact",
	Short: "Submit the MiraVision contact form from the command line",
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate and submit a contact form entry",
	Long: `Validate the form fields locally, then POST them to the contact API.

Example:
  contact submit --name "Jane Doe" --email jane@example.com \
    --service media --message "We need a launch video for spring."`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, _ := cmd.Flags().GetString("endpoint")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		form := contactform.New(endpoint)
		for _, f := range []contactform.Field{
			contactform.FieldName,
			contactform.FieldEmail,
			contactform.FieldCompany,
			contactform.FieldService,
			contactform.FieldMessage,
		} {
			value, _ := cmd.Flags().GetString(string(f))
			form.OnFieldChange(f, value)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		s := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
		s.Suffix = " Sending..."
		s.Start()
		err := form.Submit(ctx)
		s.Stop()

		state := form.State()
		if errors.Is(err, contactform.ErrInvalidForm) {
			printFieldErrors(state.FieldErrors)
			return err
		}
		if err != nil {
			if state.LastMessage != "" {
				fmt.Fprintf(os.Stderr, "✗ %s\n", state.LastMessage)
			}
			return err
		}

		fmt.Printf("✓ %s\n", state.LastMessage)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <field> <value>",
	Short: "Check a single field the way the form does while typing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if msg := contactform.ValidateField(contactform.Field(args[0]), args[1]); msg != "" {
			return errors.New(msg)
		}
		fmt.Println("ok")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

func printFieldErrors(errs map[contactform.Field]string) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", f, errs[contactform.Field(f)])
	}
}

func init() {
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)

	submitCmd.Flags().String("endpoint", "http://localhost:8080/api/contact", "Contact API endpoint")
	submitCmd.Flags().Duration("timeout", 60*time.Second, "Overall request timeout")
	submitCmd.Flags().String("name", "", "Your name")
	submitCmd.Flags().String("email", "", "Your email address")
	submitCmd.Flags().String("company", "", "Company (optional)")
	submitCmd.Flags().String("service", "", "Service of interest: "+strings.Join(contactform.Services, ", "))
	submitCmd.Flags().String("message", "", "Your message")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
