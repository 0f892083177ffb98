package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/api"
	"github.com/mizutori/pagelens/internal/cache"
	"github.com/mizutori/pagelens/internal/svcctx"
)

// maxImportBytes caps the import body size. Exported caches for long
// series run tens of megabytes.
const maxImportBytes = 50 << 20

// ImportCacheEndpoint merges a previously exported cache into the live one.
// Existing entries win; only absent keys are added.
type ImportCacheEndpoint struct{}

// ImportResponse is the body returned by POST /import-cache.
type ImportResponse struct {
	Message string `json:"message"`
	Added   int    `json:"added"`
}

func (e *ImportCacheEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodPost, "/import-cache", e.handle
}

func (e *ImportCacheEndpoint) RequiresInit() bool { return true }

func (e *ImportCacheEndpoint) handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := svcctx.CacheFrom(ctx)
	logger := svcctx.LoggerFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var entries map[string]cache.Entry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "invalid cache payload: "+err.Error())
		return
	}

	added, err := store.Import(entries)
	if err != nil {
		logger.Error("cache save after import failed", "error", err)
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Message: "Import successful",
		Added:   added,
	})
}

func (e *ImportCacheEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "import-cache <file>",
		Short: "Merge a cache export file into the server's cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read cache file: %w", err)
			}
			var entries map[string]cache.Entry
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("invalid cache file: %w", err)
			}

			client := api.NewClient(getServerURL())
			var resp ImportResponse
			if err := client.Post(cmd.Context(), "/import-cache", entries, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
