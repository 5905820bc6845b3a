package commands

import (
	"github.com/fivetwenty-io/rbt/internal/constants"
	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/spf13/cobra"
)

// NewReviewRequestsCommand creates the review-requests command.
func NewReviewRequestsCommand() *cobra.Command {
	var (
		countsOnly    bool
		timeAddedFrom string
		timeAddedTo   string
	)

	cmd := &cobra.Command{
		Use:     "review-requests [URL]",
		Aliases: []string{"rr"},
		Short:   "List review requests",
		Long:    "Follow the review_requests link of the API root and display the listing",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context(), cmd, args, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			params := rbt.Params{}
			if countsOnly {
				params[constants.ParamCountsOnly] = "1"
			}

			if timeAddedFrom != "" {
				params[constants.ParamTimeAddedFrom] = timeAddedFrom
			}

			if timeAddedTo != "" {
				params[constants.ParamTimeAddedTo] = timeAddedTo
			}

			listing, err := client.Navigate(cmd.Context(), params, "review_requests")
			if err != nil {
				return err
			}

			return renderComponent(cmd.OutOrStdout(), listing)
		},
	}

	cmd.Flags().BoolVar(&countsOnly, "counts-only", false, "return only the number of matching review requests")
	cmd.Flags().StringVar(&timeAddedFrom, "time-added-from", "", "earliest date or timestamp the review request was added")
	cmd.Flags().StringVar(&timeAddedTo, "time-added-to", "", "latest date or timestamp the review request was added")

	return cmd
}
