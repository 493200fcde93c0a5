package ingest

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	model "reuse-market/internal/models"
	"reuse-market/internal/repository"
	"reuse-market/utils"
)

// Job periodically imports give-away posts from campus mailing-list
// archives as listings. Imported items carry the list name and the
// poster's email instead of a seller account.
type Job struct {
	repo     repository.MarketDB
	client   *http.Client
	urls     []string
	interval time.Duration
}

func NewJob(repo repository.MarketDB, archiveURLs []string, interval time.Duration) *Job {
	return &Job{
		repo:     repo,
		client:   &http.Client{Timeout: 30 * time.Second},
		urls:     archiveURLs,
		interval: interval,
	}
}

// Start begins the periodic import. It runs once immediately, then on
// every tick until the context is cancelled.
func (j *Job) Start(ctx context.Context) {
	if len(j.urls) == 0 {
		return
	}

	go func() {
		j.runOnce(ctx)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.runOnce(ctx)
			}
		}
	}()
}

func (j *Job) runOnce(ctx context.Context) {
	for _, url := range j.urls {
		imported, err := j.importArchive(ctx, url)
		if err != nil {
			utils.Warn("ingest: archive import failed", map[string]any{"url": url, "error": err.Error()})
			continue
		}
		utils.Info("ingest: archive imported", map[string]any{"url": url, "imported": imported})
	}
}

func (j *Job) importArchive(ctx context.Context, url string) (int, error) {
	body, err := j.fetch(ctx, url)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, msg := range ParseArchive(body) {
		item := msg.ToItem(listName(url))
		if item.Name == "" || item.Email == "" {
			continue
		}

		dup, err := j.alreadyImported(item)
		if err != nil {
			return imported, err
		}
		if dup {
			continue
		}

		item.ItemID = utils.GenerateID()
		if err := j.repo.CreateItem(item); err != nil {
			return imported, fmt.Errorf("failed to store imported item %q: %w", item.Name, err)
		}
		imported++
	}

	return imported, nil
}

// alreadyImported checks for a prior import of the same post. Name plus
// poster plus list is as close to a message id as the archives give us.
func (j *Job) alreadyImported(item model.Item) (bool, error) {
	existing, err := j.repo.SearchItems(item.Name, 0, 10)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate of %q: %w", item.Name, err)
	}
	for _, e := range existing {
		if e.Name == item.Name && e.Email == item.Email && e.MailingList == item.MailingList {
			return true, nil
		}
	}
	return false, nil
}

func (j *Job) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build archive request: %w", err)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch archive %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("archive %s returned status %d", url, resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if strings.HasSuffix(url, ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to decompress archive %s: %w", url, err)
		}
		defer gz.Close()
		reader = gz
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read archive %s: %w", url, err)
	}

	return string(raw), nil
}

// listName extracts the mailing list name from an archive URL, e.g.
// .../mailman/private/reuse/2024-September.txt.gz -> "reuse".
func listName(url string) string {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	for i, part := range parts {
		if (part == "private" || part == "archives") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return ""
}
