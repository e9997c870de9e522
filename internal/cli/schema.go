package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewSchemaCmd создаёт группу команд для управления схемами.
func NewSchemaCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage field schemas",
	}

	cmd.AddCommand(
		newSchemaListCmd(clientFn, outputFn),
		newSchemaCreateCmd(clientFn, outputFn),
		newSchemaShowCmd(clientFn, outputFn),
		newSchemaUpdateCmd(clientFn, outputFn),
		newSchemaDeleteCmd(clientFn, outputFn),
		newSchemaGraphCmd(clientFn, outputFn),
	)

	return cmd
}

func newSchemaListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			schemas, err := client.ListSchemas()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "FIELDS", "ACTIVE", "CREATED"}
			rows := make([][]string, len(schemas))
			for i, s := range schemas {
				rows[i] = []string{
					s.ID, s.Name,
					strconv.Itoa(len(s.Fields)),
					strconv.FormatBool(s.IsActive),
					s.CreatedAt,
				}
			}

			out.Print(headers, rows, schemas)
			return nil
		},
	}
}

func newSchemaCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var docFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a schema from a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(docFile)
			if err != nil {
				return fmt.Errorf("failed to read schema file: %w", err)
			}

			// Валидируем что это валидный JSON
			if !json.Valid(data) {
				return fmt.Errorf("schema file is not valid JSON")
			}

			schema, err := client.CreateSchema(json.RawMessage(data))
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schema created: %s", schema.ID))
			out.Print(
				[]string{"ID", "NAME", "FIELDS", "ACTIVE", "CREATED"},
				[][]string{{
					schema.ID, schema.Name,
					strconv.Itoa(len(schema.Fields)),
					strconv.FormatBool(schema.IsActive),
					schema.CreatedAt,
				}},
				schema,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&docFile, "file", "", "Path to schema JSON file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newSchemaShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|NAME",
		Short: "Show schema details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			schema, err := client.GetSchema(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "FIELDS", "ACTIVE", "CREATED"},
				[][]string{{
					schema.ID, schema.Name,
					strconv.Itoa(len(schema.Fields)),
					strconv.FormatBool(schema.IsActive),
					schema.CreatedAt,
				}},
				schema,
			)
			return nil
		},
	}
}

func newSchemaUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var active string
	var fieldsFile string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateSchemaRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("active") {
				b, err := strconv.ParseBool(active)
				if err != nil {
					return fmt.Errorf("invalid value for --active: %s", active)
				}
				req.IsActive = &b
			}
			if cmd.Flags().Changed("fields-file") {
				data, err := os.ReadFile(fieldsFile)
				if err != nil {
					return fmt.Errorf("failed to read fields file: %w", err)
				}
				if !json.Valid(data) {
					return fmt.Errorf("fields file is not valid JSON")
				}
				req.Fields = json.RawMessage(data)
			}

			schema, err := client.UpdateSchema(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Schema updated")
			out.Print(
				[]string{"ID", "NAME", "FIELDS", "ACTIVE", "CREATED"},
				[][]string{{
					schema.ID, schema.Name,
					strconv.Itoa(len(schema.Fields)),
					strconv.FormatBool(schema.IsActive),
					schema.CreatedAt,
				}},
				schema,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New schema name")
	cmd.Flags().StringVar(&active, "active", "", "Set active status (true/false)")
	cmd.Flags().StringVar(&fieldsFile, "fields-file", "", "Path to fields JSON file")

	return cmd
}

func newSchemaDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteSchema(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schema deleted: %s", args[0]))
			return nil
		},
	}
}

func newSchemaGraphCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "graph ID",
		Short: "Show dependency waves for a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			graph, err := client.GetSchemaGraph(args[0])
			if err != nil {
				return err
			}

			headers := []string{"WAVE", "FIELDS"}
			rows := make([][]string, len(graph.Waves))
			for i, w := range graph.Waves {
				rows[i] = []string{strconv.Itoa(w.Index), strings.Join(w.Fields, ", ")}
			}

			out.Print(headers, rows, graph)

			for _, warn := range graph.Warnings {
				out.Error(warn)
			}
			return nil
		},
	}
}
