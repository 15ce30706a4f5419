// Package cli provides the knowbase command line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driving"
	"github.com/custodia-labs/knowbase/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services holds the driving ports the commands call.
type Services struct {
	Ingest     driving.IngestService
	Files      driving.FileService
	Search     driving.SearchService
	Importer   driving.BulkImporter
	AutoIngest driving.AutoIngester
	Settings   driving.SettingsService
}

// appServices holds the ports injected by main.
var appServices *Services

var (
	verbose      bool
	outputFormat string
)

// Output formats accepted by --output.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var rootCmd = &cobra.Command{
	Use:   "knowbase",
	Short: "Document store and knowledge base",
	Long: `knowbase stores documents, splits their text into chunks and keeps a
searchable catalog of files, categories, descriptions and tags.

Upload single files or import whole directories, then search across names,
metadata and content. The mcp command exposes the same catalog to AI
assistants over the Model Context Protocol.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", formatText, "output format: text, json or yaml")
}

// SetServices sets the ports used by every command.
func SetServices(s *Services) {
	appServices = s
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func preRun(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	switch outputFormat {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("%w: unknown output format %q", domain.ErrInvalidInput, outputFormat)
	}
}

var errNotConfigured = errors.New("services not configured")

// requireServices returns the injected services or an error when main did
// not wire them.
func requireServices() (*Services, error) {
	if appServices == nil {
		return nil, errNotConfigured
	}
	return appServices, nil
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		return 2
	case domain.KindNotFound:
		return 3
	case domain.KindUnsupported:
		return 4
	case domain.KindStorage:
		return 5
	case domain.KindCatalog:
		return 6
	default:
		return 1
	}
}
