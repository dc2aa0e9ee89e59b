package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"realmauth/internal/formatting"
	"realmauth/internal/whoami"
	"realmauth/pkg/realm"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSampleCmd(opts *rootOptions) *cobra.Command {
	var (
		write bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print a sample whoami document",
		Long: `Print a whoami document with two realms and three tenants. All IDs are
random UUIDs, so the document also passes --strict validation.

YAML is printed unless -o json is given. With --write the document is saved
to the configured whoami path instead.

Examples:
  realmauth sample
  realmauth sample -o json
  realmauth sample --write`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := encodeDocument(whoami.Sample(), opts.settings.Output)
			if err != nil {
				return err
			}

			if !write {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			path := opts.settings.WhoAmI
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", path, err)
			}
			if err := os.WriteFile(path, data, 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample whoami document to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Write the document to the whoami path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing document with --write")
	return cmd
}

// encodeDocument renders doc as JSON for -o json and as YAML otherwise.
func encodeDocument(doc *realm.AccessContext, format formatting.OutputFormat) ([]byte, error) {
	var buf bytes.Buffer
	if format == formatting.FormatJSON {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return buf.Bytes(), nil
	}

	if err := writeYAMLDocument(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeYAMLDocument(w io.Writer, doc *realm.AccessContext) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
