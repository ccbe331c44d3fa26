package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex"
	"github.com/kailas-cloud/recordex/internal/domain/document"
	logpkg "github.com/kailas-cloud/recordex/internal/logger"
)

func newStylesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List loaded and failed styles of every registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, r := range a.catalog.Styles() {
				fmt.Fprintf(w, "%s: %s\n", r.Registry, strings.Join(r.Loaded, ", "))
				failed := make([]string, 0, len(r.Failed))
				for name := range r.Failed {
					failed = append(failed, name)
				}
				sort.Strings(failed)
				for _, name := range failed {
					fmt.Fprintf(w, "  failed %s: %v\n", name, r.Failed[name])
				}
			}
			return nil
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	var style, to string
	cmd := &cobra.Command{
		Use:   "convert FILE|-",
		Short: "Load a record document and write it in another encoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := document.ParseFormat(to)
			if err != nil {
				return err
			}
			rec, err := a.readRecord(cmd, style, args[0])
			if err != nil {
				return err
			}
			return writeModel(cmd.OutOrStdout(), rec, f)
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "Record style (required)")
	cmd.Flags().StringVarP(&to, "to", "t", "json", "Output encoding: json|xml|yaml")
	_ = cmd.MarkFlagRequired("style")
	return cmd
}

func newMetadataCmd(a *app) *cobra.Command {
	var style, name string
	cmd := &cobra.Command{
		Use:   "metadata FILE|-",
		Short: "Print the metadata row of a record document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.readRecord(cmd, style, args[0])
			if err != nil {
				return err
			}
			rec.SetName(name)
			return printJSON(cmd.OutOrStdout(), rec.Metadata())
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "Record style (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Record name to include in the row")
	_ = cmd.MarkFlagRequired("style")
	return cmd
}

func newFilterCmd(a *app) *cobra.Command {
	var (
		style, prefix string
		queries       []string
		asList        bool
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Compile field queries into a document filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := parseQueries(queries)
			if err != nil {
				return err
			}
			layout, err := a.catalog.Layout(style)
			if err != nil {
				return err
			}
			if asList {
				var list recordex.List
				if err := layout.Queries().BuildFilter(&list, values, prefix); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list.Fragment())
			}
			doc := recordex.Doc{}
			if err := layout.Queries().BuildFilter(doc, values, prefix); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "Record style (required)")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "Query value as key=value (repeat a key for several values)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Prefix for every field path")
	cmd.Flags().BoolVar(&asList, "list", false, "Accumulate one clause per query and fold them under $and")
	_ = cmd.MarkFlagRequired("style")
	return cmd
}

func newPutCmd(a *app) *cobra.Command {
	var (
		style, name string
		overwrite   bool
	)
	cmd := &cobra.Command{
		Use:   "put FILE|-",
		Short: "Store a record document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.readRecord(cmd, style, args[0])
			if err != nil {
				return err
			}
			rec.SetName(name)

			ctx := cmd.Context()
			database, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			saved, err := database.Save(ctx, rec, overwrite)
			if err != nil {
				return err
			}
			logpkg.FromContext(ctx).Info("Record stored", zap.String("style", style), zap.String("name", saved))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), saved)
			return err
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "Record style (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Record name (default: random UUID)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing record of the same name")
	_ = cmd.MarkFlagRequired("style")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var style, to string
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := document.ParseFormat(to)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			database, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			rec, err := database.Get(ctx, style, args[0])
			if err != nil {
				return err
			}
			return writeModel(cmd.OutOrStdout(), rec, f)
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "Record style (required)")
	cmd.Flags().StringVarP(&to, "to", "t", "json", "Output encoding: json|xml|yaml")
	_ = cmd.MarkFlagRequired("style")
	return cmd
}

func newFindCmd(a *app) *cobra.Command {
	var (
		style    string
		queries  []string
		withMeta bool
	)
	cmd := &cobra.Command{
		Use:   "find",
		Short: "List stored records matching every query value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := parseQueries(queries)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			database, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			recs, err := database.Find(ctx, style, values)
			if err != nil {
				return err
			}
			if withMeta {
				rows := make([]recordex.Row, len(recs))
				for i, r := range recs {
					rows[i] = r.Metadata()
				}
				return printJSON(cmd.OutOrStdout(), rows)
			}
			for _, r := range recs {
				fmt.Fprintln(cmd.OutOrStdout(), r.Name())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "Record style (required)")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "Query value as key=value (repeat a key for several values)")
	cmd.Flags().BoolVar(&withMeta, "metadata", false, "Print metadata rows instead of names")
	_ = cmd.MarkFlagRequired("style")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Delete(ctx, style, args[0]); err != nil {
				return err
			}
			logpkg.FromContext(ctx).Info("Record deleted", zap.String("style", style), zap.String("name", args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "Record style (required)")
	_ = cmd.MarkFlagRequired("style")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var (
		style      string
		set, clear []string
	)
	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Change fields of a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseQueries(set)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			database, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			rec, err := database.Update(ctx, style, args[0], values, clear...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec.Metadata())
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "Record style (required)")
	cmd.Flags().StringArrayVar(&set, "set", nil, "Field value as name=value (repeat a name for a list)")
	cmd.Flags().StringArrayVar(&clear, "clear", nil, "Field to unset")
	_ = cmd.MarkFlagRequired("style")
	return cmd
}

// readRecord loads a record of style from a file, or stdin for "-".
func (a *app) readRecord(cmd *cobra.Command, style, path string) (*recordex.Record, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rec, err := a.catalog.LoadRecord(style)
	if err != nil {
		return nil, err
	}
	if err := rec.LoadBytes(data); err != nil {
		return nil, err
	}
	return rec, nil
}

func writeModel(w io.Writer, rec *recordex.Record, f document.Format) error {
	model, err := rec.BuildModel()
	if err != nil {
		return err
	}
	data, err := document.Encode(model, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// parseQueries turns repeated key=value flags into query values. A key given
// more than once collects its values into a list.
func parseQueries(raw []string) (map[string]any, error) {
	values := make(map[string]any, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("query %q: want key=value", kv)
		}
		switch prev := values[k].(type) {
		case nil:
			values[k] = v
		case string:
			values[k] = []any{prev, v}
		case []any:
			values[k] = append(prev, v)
		}
	}
	return values, nil
}
