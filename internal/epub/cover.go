package epub

import (
	"context"
	"net/http"
)

type coverAsset struct {
	name      string
	mediaType string
	data      []byte
}

var coverExt = map[string]string{
	"image/jpeg": "cover.jpg",
	"image/png":  "cover.png",
	"image/gif":  "cover.gif",
	"image/webp": "cover.webp",
}

// fetchCover downloads and sniffs the cover image. Any failure is logged and
// swallowed; the container is produced without a cover.
func (b *Builder) fetchCover(ctx context.Context, coverURL string) *coverAsset {
	if coverURL == "" || b.fetcher == nil {
		return nil
	}

	data, err := b.fetcher.Fetch(ctx, coverURL)
	if err != nil {
		if b.log != nil {
			b.log.Errorf("cover %s: %v (continuing without cover)\n", coverURL, err)
		}
		return nil
	}

	mediaType := http.DetectContentType(data)
	name, ok := coverExt[mediaType]
	if !ok {
		if b.log != nil {
			b.log.Errorf("cover %s: unexpected MIME %s (continuing without cover)\n", coverURL, mediaType)
		}
		return nil
	}

	if b.log != nil {
		b.log.Debugf("cover embedded: %s (%d bytes, %s)\n", coverURL, len(data), mediaType)
	}

	return &coverAsset{name: name, mediaType: mediaType, data: data}
}
