package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/formcutter/pkg/config"
	"github.com/chazu/formcutter/pkg/form"
	"github.com/chazu/formcutter/pkg/logging"
	"github.com/chazu/formcutter/pkg/stl"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the state shared by all subcommands.
type cli struct {
	configPath string
	logLevel   string

	cfg     config.Config
	logger  *zap.Logger
	closeFn func() error
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:           "formcutter",
		Short:         "Turn 2D outlines into printable cookie cutters",
		Long:          `Validate, analyze and extrude outline drawings into binary STL cutter meshes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closeFn != nil {
				return c.closeFn()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("FORMCUTTER_CONFIG"), "TOML or YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(
		c.newValidateCmd(),
		c.newAnalyzeCmd(),
		c.newExportCmd(),
		c.newSnapshotCmd(),
		c.newInspectCmd(),
	)
	return rootCmd
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	logger, closeFn, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	c.cfg, c.logger, c.closeFn = cfg, logger, closeFn
	return nil
}

// load builds an App over the outline at path.
func (c *cli) load(path string) (*App, error) {
	app := NewApp(c.cfg, c.logger)
	if err := app.Load(path); err != nil {
		return nil, err
	}
	return app, nil
}

func printIssues(w io.Writer, res form.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tCODE\tMESSAGE")
	for _, is := range res.Errors {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", is.Severity, is.Code, is.Message)
	}
	for _, is := range res.Warnings {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", is.Severity, is.Code, is.Message)
	}
	tw.Flush()
}

func printForms(w io.Writer, res form.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FORM\tROLE\tCLOSED\tWINDING\tPOINTS\tWIDTH\tHEIGHT")
	for i, f := range res.Forms {
		role := "outer"
		if len(res.Forms) > 1 && i != res.OuterIndex {
			role = "inner"
		}
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%d\t%.2f\t%.2f\n",
			i, role, f.Closed, f.Winding, len(f.Points), f.Width, f.Height)
	}
	tw.Flush()
}

func (c *cli) newValidateCmd() *cobra.Command {
	var forExport bool

	cmd := &cobra.Command{
		Use:   "validate <outline>",
		Short: "Check an outline for cutter rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.load(args[0])
			if err != nil {
				return err
			}
			res := app.Validate()
			if forExport {
				res = app.validator.ValidateForExport(app.Graph())
			}

			out := cmd.OutOrStdout()
			printForms(out, res)
			if len(res.Errors)+len(res.Warnings) > 0 {
				fmt.Fprintln(out)
				printIssues(out, res)
			}
			if !res.Valid {
				return fmt.Errorf("outline is not valid: %d error(s)", len(res.Errors))
			}
			fmt.Fprintln(out, "\noutline is valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&forExport, "export", false, "Apply the stricter export rules")
	return cmd
}

func (c *cli) newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <outline>",
		Short: "Report sharp corners and thin walls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.load(args[0])
			if err != nil {
				return err
			}
			_, report := app.Analyze()

			out := cmd.OutOrStdout()
			if report.Empty() {
				fmt.Fprintln(out, "no manufacturability problems found")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tLOCATION")
			for _, id := range report.CriticalNodes {
				p := app.Graph().Node(id).Pos
				fmt.Fprintf(tw, "sharp corner\tnode %s at (%.2f, %.2f)\n", id, p.X, p.Y)
			}
			for _, s := range report.CriticalSegments {
				fmt.Fprintf(tw, "thin wall\t(%.2f, %.2f)-(%.2f, %.2f)\n", s.A.X, s.A.Y, s.B.X, s.B.Y)
			}
			tw.Flush()
			return nil
		},
	}
}

func (c *cli) newExportCmd() *cobra.Command {
	var output string
	var thickness, height float64

	cmd := &cobra.Command{
		Use:   "export <outline>",
		Short: "Extrude an outline into a binary STL cutter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("thickness") {
				c.cfg.Blade.Thickness = thickness
			}
			if cmd.Flags().Changed("height") {
				c.cfg.Blade.Height = height
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			app, err := c.load(args[0])
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			m, err := app.Export(&buf)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d facets, %s\n",
				output, m.FacetCount(), humanize.Bytes(uint64(buf.Len())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "cutter.stl", "Output STL file")
	cmd.Flags().Float64Var(&thickness, "thickness", 0, "Blade thickness (overrides config)")
	cmd.Flags().Float64Var(&height, "height", 0, "Blade height (overrides config)")
	return cmd
}

func (c *cli) newSnapshotCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot <outline>",
		Short: "Write an outline as a JSON graph snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.load(args[0])
			if err != nil {
				return err
			}
			data, err := app.Backup()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", output, humanize.Bytes(uint64(len(data))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func (c *cli) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.stl>",
		Short: "Summarize a binary STL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			m, err := stl.Decode(f)
			if err != nil {
				return err
			}
			lo, hi := stl.BoundingBox(m)
			size := hi.Sub(lo)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "name\t%q\n", m.Name)
			fmt.Fprintf(tw, "size\t%s\n", humanize.Bytes(uint64(info.Size())))
			fmt.Fprintf(tw, "facets\t%s\n", humanize.Comma(int64(m.FacetCount())))
			fmt.Fprintf(tw, "extent\t%.2f x %.2f x %.2f\n", size.X, size.Y, size.Z)
			fmt.Fprintf(tw, "volume\t%.2f\n", m.Volume())
			fmt.Fprintf(tw, "closed\t%t\n", m.IsClosed())
			fmt.Fprintf(tw, "shells\t%d\n", m.Shells())
			return tw.Flush()
		},
	}
}
