package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/api"
	"github.com/mizutori/pagelens/internal/jobs"
	"github.com/mizutori/pagelens/internal/svcctx"
)

// PreprocessChapterEndpoint launches a background OCR job over a whole
// chapter's pages.
type PreprocessChapterEndpoint struct{}

// PreprocessRequest is the body accepted by POST /preprocess-chapter.
type PreprocessRequest struct {
	BaseURL string   `json:"base_url"`
	Pages   []string `json:"pages"`
	User    string   `json:"user,omitempty"`
	Pass    string   `json:"pass,omitempty"`
	Context string   `json:"context,omitempty"`
}

func (e *PreprocessChapterEndpoint) Route() (string, string, http.HandlerFunc) {
	return http.MethodPost, "/preprocess-chapter", e.handle
}

func (e *PreprocessChapterEndpoint) RequiresInit() bool { return true }

func (e *PreprocessChapterEndpoint) handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	manager := svcctx.JobsFrom(ctx)

	var req PreprocessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.BaseURL == "" {
		writeError(w, http.StatusBadRequest, "missing required field: base_url")
		return
	}
	if len(req.Pages) == 0 {
		writeError(w, http.StatusBadRequest, "missing required field: pages")
		return
	}
	if req.Context == "" {
		req.Context = DefaultContext
	}

	err := manager.StartChapter(ctx, jobs.ChapterRequest{
		BaseURL: req.BaseURL,
		Pages:   req.Pages,
		User:    req.User,
		Pass:    req.Pass,
		Context: req.Context,
	})
	if errors.Is(err, jobs.ErrAlreadyProcessing) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_processing"})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (e *PreprocessChapterEndpoint) Command(getServerURL func() string) *cobra.Command {
	var user, pass, chapterContext string

	cmd := &cobra.Command{
		Use:   "preprocess-chapter <base-url> <page-url>...",
		Short: "Queue a chapter's pages for background OCR",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := PreprocessRequest{
				BaseURL: args[0],
				Pages:   args[1:],
				User:    user,
				Pass:    pass,
				Context: chapterContext,
			}

			client := api.NewClient(getServerURL())
			var resp map[string]string
			if err := client.Post(cmd.Context(), "/preprocess-chapter", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "basic auth username for the image host")
	cmd.Flags().StringVar(&pass, "pass", "", "basic auth password for the image host")
	cmd.Flags().StringVar(&chapterContext, "context", "", "chapter context tag for the cache entries")

	return cmd
}
