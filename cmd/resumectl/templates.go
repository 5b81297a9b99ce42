package main

import (
	"fmt"
	"io"
	"os"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/internal/repository/postgres"
	"github.com/CalumRakk/resume-project/internal/usecase"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// catalog is the on-disk format read by templates import.
type catalog struct {
	Templates []domain.Template `yaml:"templates"`
}

var (
	catalogFile string

	templatesCmd = &cobra.Command{
		Use:   "templates",
		Short: "Manage the template catalog",
	}

	templatesImportCmd = &cobra.Command{
		Use:   "import",
		Short: "Upsert templates from a YAML catalog",
		Long: `
Reads a YAML catalog and upserts every template by name. Import stops at the
first invalid entry; templates before it stay written.

Catalog format:

  templates:
    - name: Modern
      description: Two column layout
      component_name: modern-resume
      customization_rules:
        primary_color: "#1f2937"

Usage:
  $ resumectl templates import --file catalog.yaml
`,
		Args: cobra.NoArgs,
		RunE: runTemplatesImport,
	}
)

func init() {
	templatesImportCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "Path to the YAML catalog, or - for stdin")
	_ = templatesImportCmd.MarkFlagRequired("file")

	templatesCmd.AddCommand(templatesImportCmd)
}

func parseCatalog(r io.Reader) ([]domain.Template, error) {
	var c catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return c.Templates, nil
}

func runTemplatesImport(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if catalogFile != "-" {
		f, err := os.Open(catalogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	templates, err := parseCatalog(in)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty, nothing to import")
		return nil
	}

	_, pool, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	uc := usecase.NewTemplateUsecase(
		postgres.NewTemplateRepository(pool),
		postgres.NewCustomizationRepository(pool),
		postgres.NewResumeRepository(pool),
	)
	n, err := uc.ImportTemplates(cmd.Context(), templates)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d templates\n", n, len(templates))
	return err
}
