package llmutils

import (
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// DownloadImageData downloads the content from the given URL and returns the
// image MIME type and data.
func DownloadImageData(url string) (string, []byte, error) {
	resp, err := http.Get(url) //nolint
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to fetch image from url")
	}
	defer resp.Body.Close()

	urlData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to read image bytes")
	}

	mimeType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		return "", nil, errors.Newf("invalid mime type %q", mimeType)
	}

	return mimeType, urlData, nil
}

// DetectImageMIME sniffs the MIME type of image bytes.
func DetectImageMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return ""
}
