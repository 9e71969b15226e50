package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lkhn/wealth-backend/pkg/client"
)

type FeedbackOptions struct {
	*RootOptions
	Rating int
	Email  string
}

func NewFeedbackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeedbackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "feedback <message>",
		Short: "Submit feedback",
		Long: `Submit feedback with a 1-5 rating.

If the API cannot be reached the feedback is queued locally; run "lkhn sync" later to resend it.

Example:
  lkhn feedback "Love the dashboard" --rating 5 --email me@example.com`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts.RootOptions, func(c *client.Client) error {
				res, err := c.SubmitFeedback(cmd.Context(), client.FeedbackInput{
					Feedback: args[0],
					Rating:   opts.Rating,
					Email:    opts.Email,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Thank you for your feedback!")
				if res.Queued {
					fmt.Fprintln(cmd.ErrOrStderr(), "note: the API was unreachable; feedback queued locally")
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&opts.Rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&opts.Email, "email", "", "optional contact email")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}

type WaitlistOptions struct {
	*RootOptions
	Name string
}

func NewWaitlistCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WaitlistOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "waitlist <email>",
		Short:         "Join the waitlist",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts.RootOptions, func(c *client.Client) error {
				if err := c.JoinWaitlist(cmd.Context(), client.WaitlistInput{Email: args[0], Name: opts.Name}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "You're on the waitlist! Check your inbox for a confirmation.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "your name")

	return cmd
}

type OfflineOptions struct {
	*RootOptions
	Device string
}

func NewOfflineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OfflineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "offline <user-id>",
		Short:         "Mark a user offline",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts.RootOptions, func(c *client.Client) error {
				return c.MarkOffline(cmd.Context(), args[0], opts.Device)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Device, "device", "", "device label")

	return cmd
}

func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "sync",
		Short:         "Resend queued feedback",
		Long: `Resend queued feedback, oldest first.

Entries the API rejects with a 4xx are dropped from the queue and listed.
Any other failure stops the run and keeps the remaining entries queued.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(rootOpts, func(c *client.Client) error {
				res, err := c.SyncPending(cmd.Context())
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "sent %d queued feedback\n", res.Sent)
				for _, p := range res.Rejected {
					fmt.Fprintf(out, "dropped (rejected by API): %s\t%d\t%s\n", p.Timestamp.Format("2006-01-02T15:04:05Z"), p.Rating, p.Feedback)
				}
				return err
			})
		},
	}
}

func NewPendingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "pending",
		Short:         "List queued feedback",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(rootOpts, func(c *client.Client) error {
				pending, err := c.Pending(cmd.Context())
				if err != nil {
					return err
				}
				for _, p := range pending {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", p.Timestamp.Format("2006-01-02T15:04:05Z"), p.Rating, p.Feedback)
				}
				return nil
			})
		},
	}
}
