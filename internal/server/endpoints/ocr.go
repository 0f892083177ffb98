package endpoints

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/api"
	"github.com/mizutori/pagelens/internal/cache"
	"github.com/mizutori/pagelens/internal/ocr"
	"github.com/mizutori/pagelens/internal/svcctx"
)

// DefaultContext tags cache entries created without an explicit chapter
// context.
const DefaultContext = "No Context"

// OCREndpoint serves single-page OCR requests, cache-first.
type OCREndpoint struct{}

func (e *OCREndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodGet, "/ocr", e.handle
}

func (e *OCREndpoint) RequiresInit() bool { return true }

func (e *OCREndpoint) handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := svcctx.CacheFrom(ctx)
	proc := svcctx.PipelineFrom(ctx)
	counters := svcctx.CountersFrom(ctx)
	logger := svcctx.LoggerFrom(ctx)

	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		writeError(w, http.StatusBadRequest, "missing required parameter: url")
		return
	}
	user := r.URL.Query().Get("user")
	pass := r.URL.Query().Get("pass")
	pageContext := r.URL.Query().Get("context")
	if pageContext == "" {
		pageContext = DefaultContext
	}

	key := cache.Key(pageURL)
	if entry, ok := store.Get(key); ok {
		counters.RequestProcessed()
		writeJSON(w, http.StatusOK, entry.Data)
		return
	}

	results, err := proc.Process(ctx, pageURL, user, pass)
	if err != nil {
		logger.Error("page OCR failed", "url", pageURL, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	counters.RequestProcessed()
	if err := store.Put(key, cache.Entry{Context: pageContext, Data: results}); err != nil {
		var perr *cache.PersistenceError
		if errors.As(err, &perr) {
			logger.Error("cache save failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, results)
}

func (e *OCREndpoint) Command(getServerURL func() string) *cobra.Command {
	var user, pass, pageContext string

	cmd := &cobra.Command{
		Use:   "ocr <url>",
		Short: "OCR a single page image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("url", args[0])
			if user != "" {
				q.Set("user", user)
			}
			if pass != "" {
				q.Set("pass", pass)
			}
			if pageContext != "" {
				q.Set("context", pageContext)
			}

			client := api.NewClient(getServerURL())
			var results []ocr.Result
			if err := client.Get(cmd.Context(), "/ocr?"+q.Encode(), &results); err != nil {
				return err
			}
			return api.Output(results)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "basic auth username for the image host")
	cmd.Flags().StringVar(&pass, "pass", "", "basic auth password for the image host")
	cmd.Flags().StringVar(&pageContext, "context", "", "chapter context tag for the cache entry")

	return cmd
}
