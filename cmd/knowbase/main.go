// Command knowbase is the document store and knowledge base CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/knowbase/internal/adapters/driven/blob/local"
	"github.com/custodia-labs/knowbase/internal/adapters/driven/config/file"
	"github.com/custodia-labs/knowbase/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/knowbase/internal/adapters/driving/cli"
	"github.com/custodia-labs/knowbase/internal/connectors/filesystem"
	"github.com/custodia-labs/knowbase/internal/core/services"
	"github.com/custodia-labs/knowbase/internal/normalisers"
	"github.com/custodia-labs/knowbase/internal/postprocessors/chunker"
)

// version is set via -ldflags at release time.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env file is normal.
	_ = godotenv.Load()

	svc, cleanup, err := wire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCode(err)
	}
	defer cleanup()

	cli.SetServices(svc)
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCode(err)
	}
	return 0
}

// wire builds the stores and services once. The returned cleanup closes
// the catalog.
func wire() (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(os.Getenv("KNOWBASE_CONFIG_DIR"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog: %w", err)
	}
	blobs, err := local.New(settings.Storage.BlobDir)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("opening blob store: %w", err)
	}
	catalog := store.Catalog()

	ingest := services.NewIngestService(
		catalog,
		blobs,
		normalisers.DefaultRegistry(),
		chunker.New(chunker.WithChunkSize(settings.Ingest.MaxChunkSize)),
		services.WithMIMEDetector(normalisers.DetectMIME),
		services.WithMaxUploadBytes(settings.Ingest.MaxUploadBytes),
		services.WithDefaultCategory(settings.Ingest.DefaultCategory),
	)

	svc := &cli.Services{
		Ingest:     ingest,
		Files:      services.NewFileService(catalog, blobs),
		Search:     services.NewSearchService(catalog),
		Importer:   services.NewImporter(ingest, filesystem.NewSource()),
		AutoIngest: services.NewAutoIngestService(ingest, filesystem.NewWatcher()),
		Settings:   settingsService,
	}

	return svc, func() { _ = store.Close() }, nil
}
