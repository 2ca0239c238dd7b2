// Package epub assembles the final e-book container: mimetype, container
// descriptor, package document, NCX navigation, stylesheet, optional cover
// and one XHTML document per included chapter.
package epub

import (
	"archive/zip"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/calegray/novelbind/internal/fetch"
	"github.com/calegray/novelbind/internal/novel"
)

// ErrNothingToPackage means no chapter is both completed and included.
// Surfaced before a single byte of output is written.
var ErrNothingToPackage = errors.New("epub: nothing to package")

type logger interface {
	Debugf(string, ...any)
	Errorf(string, ...any)
}

// Builder writes EPUB 2 containers. Zero value is not usable; use NewBuilder.
type Builder struct {
	fetcher fetch.Fetcher
	log     logger

	// Now is the clock used for the modification timestamp. Tests pin it.
	Now func() time.Time
}

// NewBuilder returns a Builder. fetcher is only used to embed the cover and
// may be nil, in which case covers are skipped.
func NewBuilder(fetcher fetch.Fetcher, log logger) *Builder {
	return &Builder{fetcher: fetcher, log: log, Now: time.Now}
}

// Assemble writes the container for every chapter that is completed and
// included, in slice order. Cover embedding failures are logged and skipped;
// everything else is fatal.
func (b *Builder) Assemble(ctx context.Context, w io.Writer, meta novel.Metadata, chapters []*novel.Chapter) error {
	var included []*novel.Chapter
	for _, ch := range chapters {
		if ch.Include && ch.Status == novel.StatusCompleted {
			included = append(included, ch)
		}
	}
	if len(included) == 0 {
		return ErrNothingToPackage
	}

	meta.ApplyDefaults()

	cover := b.fetchCover(ctx, meta.CoverURL)

	uid := "urn:uuid:" + newUUID()
	modified := b.Now().UTC().Format("2006-01-02T15:04:05Z")

	zw := zip.NewWriter(w)

	// The mimetype entry must be first and stored uncompressed; readers
	// identify the container by these exact bytes at a fixed offset.
	if err := writeStored(zw, "mimetype", []byte("application/epub+zip")); err != nil {
		return err
	}
	if err := writeEntry(zw, "META-INF/container.xml", []byte(containerXML)); err != nil {
		return err
	}
	if err := writeEntry(zw, "OEBPS/content.opf", []byte(buildOPF(meta, included, uid, modified, cover))); err != nil {
		return err
	}
	if err := writeEntry(zw, "OEBPS/toc.ncx", []byte(buildNCX(meta, included, uid))); err != nil {
		return err
	}
	if err := writeEntry(zw, "OEBPS/styles.css", []byte(stylesheet)); err != nil {
		return err
	}
	if cover != nil {
		if err := writeEntry(zw, "OEBPS/"+cover.name, cover.data); err != nil {
			return err
		}
	}
	for i, ch := range included {
		if err := writeEntry(zw, "OEBPS/"+chapterPath(i), []byte(buildChapterXHTML(ch))); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("epub: close container: %w", err)
	}

	return nil
}

func chapterPath(i int) string {
	return fmt.Sprintf("chapter_%04d.xhtml", i+1)
}

func writeStored(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("epub: %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("epub: %s: %w", name, err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("epub: %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("epub: %s: %w", name, err)
	}
	return nil
}

// newUUID returns a random version 4 UUID.
func newUUID() string {
	var u [16]byte
	if _, err := rand.Read(u[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	u[6] = (u[6] & 0x0f) | 0x40
	u[8] = (u[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}
