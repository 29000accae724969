package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/meetlog/internal/cli"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/parser"
	"github.com/Veraticus/meetlog/internal/stats"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Classify a meeting report without saving it",
		Long: `Classify a meeting report and show what the bot would record.

The text is taken from the arguments, or from stdin when none are given.`,
		RunE: runParse,
	}

	cmd.Flags().Bool("annotate", false, "Print the report with the summary spliced in after the trigger phrase")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	catalog, err := loadCatalog(viper.GetViper())
	if err != nil {
		return err
	}

	record, err := parser.New(catalog).Classify(0, text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if annotate, _ := cmd.Flags().GetBool("annotate"); annotate {
		annotated, err := parser.Annotate(record)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, annotated)
		return err
	}

	_, err = fmt.Fprintln(out, cli.RenderBox(record.Type.DisplayName(), describeRecord(record)))
	return err
}

// describeRecord renders the classified fields of record for the terminal.
func describeRecord(record *model.ReportRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Type: %s\n", record.Type)
	if record.ActivityID != "" {
		fmt.Fprintf(&b, "Activity: %s\n", record.ActivityID)
	}

	switch record.Type {
	case model.ReportOffers:
		counts := stats.NewCounts()
		for _, offer := range record.Offers {
			counts.Add(offer)
		}
		b.WriteString("\n")
		b.WriteString(cli.RenderCounts(counts.Sorted(), "no offers"))
	case model.ReportRescheduled:
		fmt.Fprintf(&b, "Reason: %s\nComment: %s", record.RescheduleReason, record.Comment)
	case model.ReportComment:
		fmt.Fprintf(&b, "Comment: %s", record.Comment)
	}
	return b.String()
}
