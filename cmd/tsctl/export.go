package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/service"
)

type exportOptions struct {
	format string
	out    string
	filter dto.ApprovedFilterRequest
}

func (o *exportOptions) validate() error {
	if o.format != "csv" && o.format != "xlsx" {
		return fmt.Errorf("--format must be csv or xlsx, got %q", o.format)
	}
	if o.format == "xlsx" && o.out == "-" {
		return fmt.Errorf("xlsx output needs --out FILE")
	}
	return nil
}

func (o *exportOptions) run(ctx context.Context, svc service.ExportService) (*bytes.Buffer, string, error) {
	if o.format == "xlsx" {
		return svc.ApprovedXLSX(ctx, &o.filter)
	}
	return svc.ApprovedCSV(ctx, &o.filter)
}

func newExportApprovedCmd(a *app) *cobra.Command {
	o := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export-approved",
		Short: "Export approved hours as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}

			buf, filename, err := o.run(cmd.Context(), svc.Export)
			if err != nil {
				return err
			}

			out := o.out
			if out == "" {
				out = filename
			}
			if out == "-" {
				_, err = io.Copy(cmd.OutOrStdout(), buf)
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.format, "format", "csv", "csv or xlsx")
	f.StringVar(&o.out, "out", "", "output file, - for stdout; defaults to the generated file name")
	f.StringVar(&o.filter.StartDate, "from", "", "first date, YYYY-MM-DD")
	f.StringVar(&o.filter.EndDate, "to", "", "last date, YYYY-MM-DD")
	f.StringVar(&o.filter.ProjectName, "project", "", "project name")
	f.StringVar(&o.filter.VolunteerCode, "volunteer", "", "volunteer id, e.g. mima000001")
	return cmd
}
