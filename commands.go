package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DariaPPPPPP/rhizomerAPI/pkg/adapters/endpoint"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/models"
	"github.com/DariaPPPPPP/rhizomerAPI/pkg/rdf"
)

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported graph serializations",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMIME TYPE\tEXTENSION\tDESCRIPTION")
			for _, f := range []rdf.Format{rdf.FormatTurtle, rdf.FormatNTriples, rdf.FormatNQuads, rdf.FormatJSONLD} {
				info, _ := rdf.GetFormatInfo(f)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Name, info.MIMEType, info.Extension, info.Description)
			}
			return tw.Flush()
		},
	}
}

func endpointTypesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint-types",
		Short: "List registered endpoint client types",
		Long: `List the endpoint client types registered with endpoint.Register.

Endpoints that name no type use "sparql". This build registers no wire
client for it; programs embedding rhizomer register one from an init
function before running profile or retrieval commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.close()
			return writeJSON(cmd, a.clients.ListTypes())
		},
	}
}

func migrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.close()
			return a.migrate()
		},
	}
}

func browseCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "browse <uri>",
		Short: "Dereference a URI and print the RDF it publishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rdf.ParseFormat(format)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.close()
			return a.retrieval.BrowseURI(cmd.Context(), cmd.OutOrStdout(), args[0], f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(rdf.FormatTurtle), "Output format (turtle, ntriples, nquads, jsonld)")
	return cmd
}

func datasetCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage datasets",
	}

	var ds models.Dataset
	var queryType string
	create := &cobra.Command{
		Use:   "create <id>",
		Short: "Register a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			ds.ID = args[0]
			ds.QueryType = models.QueryType(queryType)
			if !ds.QueryType.Valid() {
				return fmt.Errorf("unknown query type %q", queryType)
			}
			if !cmd.Flags().Changed("sample-size") {
				ds.SampleSize = a.cfg.Profiling.DefaultSampleSize
			}
			if !cmd.Flags().Changed("coverage") {
				ds.Coverage = a.cfg.Profiling.DefaultCoverage
			}

			ctx, cleanup, err := a.withScope(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			if err := a.datasets.Create(ctx, &ds); err != nil {
				return err
			}
			return writeJSON(cmd, &ds)
		},
	}
	create.Flags().StringVar(&queryType, "query-type", string(models.QueryTypeOptimized), "Query strategy (optimized, detailed)")
	create.Flags().IntVar(&ds.SampleSize, "sample-size", 0, "Instances sampled per class by the optimized strategy")
	create.Flags().Float64Var(&ds.Coverage, "coverage", 0, "Minimum fraction of sampled instances a facet must cover")
	create.Flags().BoolVar(&ds.InferenceEnabled, "inference", false, "Materialize inferred types before detecting classes")
	create.Flags().StringVar(&ds.InferenceGraph, "inference-graph", "", "Graph receiving inferred types")
	create.Flags().StringVar(&ds.OntologiesGraph, "ontologies-graph", "", "Graph holding loaded ontologies")

	list := &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cleanup, err := a.withScope(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			datasets, err := a.datasets.List(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd, datasets)
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func endpointCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Manage dataset endpoints",
	}

	var ep models.Endpoint
	add := &cobra.Command{
		Use:   "add <dataset-id> <query-url>",
		Short: "Attach an endpoint to a dataset",
		Long: `Attach an endpoint to a dataset. Passwords are read from the
ENDPOINT_QUERY_PASSWORD and ENDPOINT_UPDATE_PASSWORD environment variables.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			if !endpoint.IsRegistered(ep.Type) {
				a.logger.Warn("Endpoint type has no registered client", zap.String("type", ep.Type))
			}
			ep.ID = uuid.New()
			ep.DatasetID = args[0]
			ep.QueryURL = args[1]
			ep.QueryPassword = os.Getenv("ENDPOINT_QUERY_PASSWORD")
			ep.UpdatePassword = os.Getenv("ENDPOINT_UPDATE_PASSWORD")
			for _, g := range ep.Graphs {
				if _, err := rdf.ParseURI(g); err != nil {
					return err
				}
			}

			ctx, cleanup, err := a.withScope(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			if _, err := a.datasets.GetByID(ctx, ep.DatasetID); err != nil {
				return err
			}
			if err := a.endpoints.Create(ctx, &ep); err != nil {
				return err
			}
			return writeJSON(cmd, &ep)
		},
	}
	add.Flags().StringVar(&ep.Type, "type", endpoint.DefaultType, "Endpoint client type")
	add.Flags().StringVar(&ep.UpdateURL, "update-url", "", "Update URL, when different from the query URL")
	add.Flags().StringVar(&ep.QueryUsername, "query-username", "", "Username for queries")
	add.Flags().StringVar(&ep.UpdateUsername, "update-username", "", "Username for updates")
	add.Flags().BoolVar(&ep.Writable, "writable", false, "Allow graph administration updates")
	add.Flags().StringSliceVar(&ep.Graphs, "graph", nil, "Named graph to query (repeatable)")

	list := &cobra.Command{
		Use:   "list <dataset-id>",
		Short: "List the endpoints of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cleanup, err := a.withScope(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			endpoints, err := a.endpoints.ListByDataset(ctx, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, endpoints)
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func profileCmd(opts *globalOptions) *cobra.Command {
	var withFacets bool

	cmd := &cobra.Command{
		Use:   "profile <dataset-id>",
		Short: "Detect the classes of a dataset, and optionally their facets",
		Long: `Detect the classes of a dataset, and optionally their facets.

Every endpoint of the dataset is queried through the client registered
for its type with endpoint.Register ("sparql" when unset). See
endpoint-types for the types available in this build.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cleanup, err := a.withScope(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ds, err := a.datasets.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			if ds.Classes, err = a.classes.ListByDataset(ctx, ds.ID); err != nil {
				return err
			}

			classes, err := a.profile.DetectClasses(ctx, ds)
			if err != nil {
				return err
			}
			if withFacets {
				for _, class := range classes {
					if class.Facets, err = a.facets.ListByClass(ctx, class.Key()); err != nil {
						return err
					}
					if _, err := a.profile.DetectFacets(ctx, ds, class); err != nil {
						return err
					}
				}
			}
			return writeJSON(cmd, classes)
		},
	}

	cmd.Flags().BoolVar(&withFacets, "facets", false, "Also detect the facets of every class")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
