package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"termo/api/internal/handover"
)

var (
	genForm     handover.Form
	genAssets   []string
	genTemplate string
	genOutput   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one handover term and write the PDF",
	Long: `Generate runs a single handover without the HTTP API.

Assets are given as CODE or CODE:observation and may be repeated:

  termo generate --nome "Ana Silva" --funcao Analista --departamento ti \
    --telefone 62999998888 --empresa acme --asset CEL001 --asset "NOT12:tela riscada"`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVar(&genForm.Name, "nome", "", "employee name")
	flags.StringVar(&genForm.Role, "funcao", "", "employee role, or \"outros\" with --outros-funcao")
	flags.StringVar(&genForm.OtherRole, "outros-funcao", "", "role text when --funcao is outros")
	flags.StringVar(&genForm.Department, "departamento", "", "department key (ti, rh, administrativo, ...)")
	flags.StringVar(&genForm.Phone, "telefone", "", "phone with area code")
	flags.StringVar(&genForm.Company, "empresa", "", "company, selects the template")
	flags.StringArrayVar(&genAssets, "asset", nil, "asset CODE[:observation], repeatable")
	flags.StringVar(&genTemplate, "template", "", "template file name overriding the company template")
	flags.StringVarP(&genOutput, "output", "o", ".", "directory receiving the PDF")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	form := genForm
	form.Assets = parseAssets(genAssets)

	d, err := buildDeps(cmd.Context(), cfg, logger, true)
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.service.Generate(cmd.Context(), form, genTemplate)
	if err != nil {
		var herr *handover.Error
		if errors.As(err, &herr) {
			for _, f := range herr.Fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Field, f.Message)
			}
		}
		return err
	}
	defer d.service.Cleanup(result)

	target := filepath.Join(genOutput, result.DownloadName)
	if err := copyFile(result.PDFPath, target); err != nil {
		return err
	}
	logger.Info("handover written", zap.String("path", target), zap.Int("items", result.Items))

	fmt.Fprintln(cmd.OutOrStdout(), target)
	if len(result.NotFound) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "not found: %s\n", strings.Join(result.NotFound, ", "))
	}
	return nil
}

// parseAssets reads CODE[:observation] values.
func parseAssets(values []string) []handover.FormAsset {
	assets := make([]handover.FormAsset, 0, len(values))
	for _, v := range values {
		code, obs, _ := strings.Cut(v, ":")
		assets = append(assets, handover.FormAsset{Identifier: code, Observation: obs})
	}
	return assets
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
