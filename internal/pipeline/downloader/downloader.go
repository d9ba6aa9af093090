package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/farxc/dre_warehouse/internal/logger"
)

const defaultFileName = "source.xlsx"

var ErrBadStatus = errors.New("unexpected HTTP status")

// Client is swapped by tests and by callers that need proxies or timeouts.
var Client = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		req.Header.Set("User-Agent", userAgent)
		return nil
	},
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// FetchWorkbook downloads the workbook at sourceURL into destDir and returns
// the local path. The file keeps the last path segment of the URL as its name.
func FetchWorkbook(ctx context.Context, sourceURL string, destDir string, appLogger *logger.Logger) (string, error) {
	const component = "Downloader"

	outputPath := filepath.Join(destDir, fileName(sourceURL))
	appLogger.Debug(component, "Starting download: url=%s path=%s", sourceURL, outputPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		appLogger.Warn(component, "Non-OK HTTP response: url=%s status=%s statusCode=%d", sourceURL, resp.Status, resp.StatusCode)
		return "", fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	if err := os.MkdirAll(destDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create download folder %s: %w", destDir, err)
	}

	// The workbook only appears under its final name once fully written.
	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bytesWritten, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write data to file: %w", err)
	}

	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}

	appLogger.Info(component, "Download completed: path=%s size=%d bytes", outputPath, bytesWritten)
	return outputPath, nil
}

func fileName(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return defaultFileName
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == ".." || name == "/" || strings.ContainsAny(name, `\`) {
		return defaultFileName
	}
	return name
}
