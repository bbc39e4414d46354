// Package source fetches the raw text of a department export and decodes it
// to UTF-8.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gyeh/deptstats/internal/config"
)

// MaxBodyBytes caps how much of a remote export is read.
var MaxBodyBytes int64 = 256 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Text is one fetched export.
type Text struct {
	ID     string // cache key, see config.ResolveSourceID
	Origin string // file path or URL it came from
	Raw    []byte // bytes as fetched, hashed for re-import detection
	Body   string // decoded UTF-8 text
}

// Loader fetches sources. The zero value uses http.DefaultClient.
type Loader struct {
	Client *http.Client
	// Now stamps the cache-busting parameter on sheet exports.
	Now func() time.Time
}

// Load fetches the single source named by cfg.
func (l *Loader) Load(ctx context.Context, cfg *config.Config) (*Text, error) {
	var (
		raw    []byte
		origin string
		err    error
	)
	switch {
	case cfg.FilePath != "":
		origin = cfg.FilePath
		raw, err = os.ReadFile(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("read source file: %w", err)
		}
	case cfg.URL != "":
		origin = cfg.URL
		raw, err = l.fetch(ctx, cfg.URL)
	case cfg.SheetID != "":
		origin = SheetExportURL(cfg.SheetID, cfg.SheetGID, l.now())
		raw, err = l.fetch(ctx, origin)
	default:
		return nil, fmt.Errorf("no source configured")
	}
	if err != nil {
		return nil, err
	}
	return &Text{
		ID:     cfg.ResolveSourceID(),
		Origin: origin,
		Raw:    raw,
		Body:   Decode(raw),
	}, nil
}

// FromBytes wraps an already-fetched body, as received by the HTTP API.
func FromBytes(id, origin string, raw []byte) *Text {
	return &Text{ID: id, Origin: origin, Raw: raw, Body: Decode(raw)}
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch source: connection failed with status %d, check the sheet's sharing permissions", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read source body: %w", err)
	}
	if int64(len(body)) > MaxBodyBytes {
		return nil, fmt.Errorf("source body exceeds %d bytes", MaxBodyBytes)
	}
	return body, nil
}

// SheetExportURL builds the CSV export URL of a Google Sheets tab. The t
// parameter defeats intermediate caches so every sync sees fresh data.
func SheetExportURL(sheetID, gid string, now time.Time) string {
	if gid == "" {
		gid = "0"
	}
	q := url.Values{}
	q.Set("format", "csv")
	q.Set("gid", gid)
	q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	return "https://docs.google.com/spreadsheets/d/" + url.PathEscape(sheetID) + "/export?" + q.Encode()
}

// Decode turns raw export bytes into NFC-normalized UTF-8 text. A UTF-8 byte
// order mark is dropped. Bytes that are not valid UTF-8 are taken to be
// Windows-1258, the legacy Vietnamese code page older hospital systems still
// export in. That code page stores tone marks as separate combining bytes, so
// the result is recomposed to NFC; a name then compares equal whichever
// encoding its export used.
func Decode(raw []byte) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return norm.NFC.String(string(raw))
	}
	decoded, _, err := transform.Bytes(transform.Chain(charmap.Windows1258.NewDecoder(), norm.NFC), raw)
	if err != nil {
		return norm.NFC.String(string(bytes.ToValidUTF8(raw, []byte("\uFFFD"))))
	}
	return string(decoded)
}
