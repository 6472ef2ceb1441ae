package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aerissecure/protocols/archive"
	"github.com/aerissecure/protocols/protocol"
)

var (
	genOrg    string
	genNumber string
	genOut    string
	genUpload bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <application>",
	Short: "Generate documents for one application and archive them",
	Long: `Generates every document for the application and writes <number>.zip next
to it, or to --out. Documents that fail are reported and skipped; the command
fails only when nothing could be generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genOrg, "org", "", "Organization name (default: from the file name)")
	generateCmd.Flags().StringVar(&genNumber, "number", "", "Application number (default: from the file name)")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "Archive path (default: <number>.zip next to the application)")
	generateCmd.Flags().BoolVar(&genUpload, "upload", false, "Upload the archive to the configured store")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	b, err := newBuilder()
	if err != nil {
		return err
	}
	source := args[0]
	res, err := b.Generate(ctx, protocol.Request{Source: source, Organization: genOrg, Number: genNumber})
	if res != nil && res.OutDir != "" {
		defer os.RemoveAll(res.OutDir)
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.Records == 0 {
		fmt.Fprintln(out, "No records found in", source)
		return nil
	}

	dest := genOut
	if dest == "" {
		dest = filepath.Join(filepath.Dir(source), res.Info.Number+".zip")
	}
	if err := archive.WriteZip(dest, res.Paths()); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	logger.Info("archive created", zap.String("archive", dest))

	for _, d := range res.Documents {
		fmt.Fprintf(out, "  %-10s %s\n", d.Kind, filepath.Base(d.Path))
	}
	for _, f := range res.Failures {
		fmt.Fprintf(out, "  FAILED     %v\n", f)
	}
	fmt.Fprintf(out, "Archive: %s (%d documents)\n", dest, len(res.Documents))

	if !genUpload {
		return nil
	}
	store, err := archive.NewStore(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("--upload needs an archive driver (set archive.driver or PROTOCOLGEN_ARCHIVE_DRIVER)")
	}
	f, err := os.Open(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	loc, err := store.Put(ctx, archive.ObjectKey(cfg.Archive.Prefix, res.Info.Number), f)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Uploaded:", loc)
	return nil
}
