// Package image resolves the picture field of a note into raw bytes
// usable as a chat attachment. A picture field holds HTML with an img
// tag whose src may be a data URI, a remote URL or a file stored in
// the collection media folder.
package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// MediaReader resolves bare filenames against the collection media
// folder.
type MediaReader interface {
	ReadMedia(name string) ([]byte, error)
}

// Attachment is a resolved picture.
type Attachment struct {
	Data []byte
	MIME string
}

var imgSrcPattern = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

// ExtractSrc returns the first img src reference in field HTML.
func ExtractSrc(html string) (string, bool) {
	m := imgSrcPattern.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Resolve turns picture field HTML into image bytes. Data URIs decode
// in place, http(s) URLs download with a size cap, anything else is
// read from the media store. A field without an img tag resolves to
// (nil, nil).
func Resolve(ctx context.Context, html string, media MediaReader) (*Attachment, error) {
	src, ok := ExtractSrc(html)
	if !ok {
		return nil, nil
	}

	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		data, err := Download(ctx, src)
		if err != nil {
			return nil, err
		}
		return &Attachment{Data: data, MIME: http.DetectContentType(data)}, nil
	default:
		return readFromMedia(src, media)
	}
}

// decodeDataURI handles src attributes of the form
// data:image/png;base64,....
func decodeDataURI(src string) (*Attachment, error) {
	rest, found := strings.CutPrefix(src, "data:")
	if !found {
		return nil, fmt.Errorf("not a data URI: %q", src)
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, fmt.Errorf("malformed data URI, no payload")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %q", meta)
	}
	mimeType := strings.TrimSuffix(meta, ";base64")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI payload: %w", err)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &Attachment{Data: data, MIME: mimeType}, nil
}

// readFromMedia loads a collection media file referenced by name. The
// name may be URL encoded in the field HTML and may carry a leading
// path like "collection.media/", which the media store does not accept.
func readFromMedia(src string, media MediaReader) (*Attachment, error) {
	if media == nil {
		return nil, fmt.Errorf("no media store to resolve %q against", src)
	}
	name := src
	if decoded, err := url.QueryUnescape(src); err == nil {
		name = decoded
	}
	name = path.Base(name)
	data, err := media.ReadMedia(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read media file %q: %w", name, err)
	}
	return &Attachment{Data: data, MIME: http.DetectContentType(data)}, nil
}
