package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewJobCmd создаёт группу команд для управления jobs.
func NewJobCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage transformation jobs",
	}

	cmd.AddCommand(
		newJobListCmd(clientFn, outputFn),
		newJobStartCmd(clientFn, outputFn),
		newJobShowCmd(clientFn, outputFn),
		newJobCancelCmd(clientFn, outputFn),
		newJobResultsCmd(clientFn, outputFn),
		newJobSummaryCmd(clientFn, outputFn),
	)

	return cmd
}

func newJobListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var schemaID string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			jobs, err := client.ListJobs(ListJobsOpts{
				SchemaID: schemaID,
				Status:   status,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "SCHEMA_ID", "STATUS", "STARTED", "FINISHED"}
			rows := make([][]string, len(jobs))
			for i, j := range jobs {
				rows[i] = []string{j.ID, j.SchemaID, j.Status, j.StartedAt, j.FinishedAt}
			}

			out.Print(headers, rows, jobs)
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaID, "schema-id", "", "Filter by schema ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING/RUNNING/SUCCEEDED/FAILED/CANCELLED)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max jobs to return")

	return cmd
}

func newJobStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var inputsFile string

	cmd := &cobra.Command{
		Use:   "start SCHEMA_ID",
		Short: "Start a transformation job for a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateJobRequest{}
			if inputsFile != "" {
				data, err := os.ReadFile(inputsFile)
				if err != nil {
					return fmt.Errorf("failed to read inputs file: %w", err)
				}
				if err := json.Unmarshal(data, &req.Inputs); err != nil {
					return fmt.Errorf("inputs file is not a valid JSON object: %w", err)
				}
			}

			job, err := client.CreateJob(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Job started: %s", job.ID))
			out.Print(
				[]string{"ID", "SCHEMA_ID", "STATUS", "CREATED"},
				[][]string{{job.ID, job.SchemaID, job.Status, job.CreatedAt}},
				job,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputsFile, "inputs-file", "", "Path to JSON file with extracted field values")

	return cmd
}

func newJobShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show job details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.GetJob(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "SCHEMA_ID", "STATUS", "STARTED", "FINISHED", "ERROR"},
				[][]string{{job.ID, job.SchemaID, job.Status, job.StartedAt, job.FinishedAt, job.Error}},
				job,
			)
			return nil
		},
	}
}

func newJobCancelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.CancelJob(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Job cancelled: %s", job.ID))
			out.Print(
				[]string{"ID", "SCHEMA_ID", "STATUS"},
				[][]string{{job.ID, job.SchemaID, job.Status}},
				job,
			)
			return nil
		},
	}
}

func newJobResultsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "results JOB_ID",
		Short: "List field results of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			results, err := client.ListResults(args[0])
			if err != nil {
				return err
			}

			headers := []string{"FIELD_ID", "NAME", "STATUS", "VALUE", "ERROR"}
			rows := make([][]string, len(results))
			for i, fr := range results {
				rows[i] = []string{
					fr.FieldID, fr.Name, fr.Status,
					formatValue(fr.Value), fr.Error,
				}
			}

			out.Print(headers, rows, results)
			return nil
		},
	}
}

func newJobSummaryCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "summary JOB_ID",
		Short: "Show summary values of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			summary, err := client.GetSummary(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ENTRY", "KEY", "VALUE"}
			var rows [][]string
			for entry, values := range summary {
				for key, v := range values {
					rows = append(rows, []string{entry, key, formatValue(v)})
				}
			}

			out.Print(headers, rows, summary)
			return nil
		},
	}
}
