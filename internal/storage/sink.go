package storage

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
	"github.com/rohmanhakim/sitemap-crawler/pkg/fileutil"
	"github.com/rohmanhakim/sitemap-crawler/pkg/hashutil"
)

/*
Responsibilities
- Persist HTML, Markdown, PDF, PDF-text, and media artifacts
- Ensure deterministic filenames (SHA-256(url) hex + extension)

Output Characteristics
- Stable directory layout, one subtree per artifact kind
- Idempotent writes
- Overwrite-safe reruns
*/

// ArtifactWriter persists one artifact for a crawled URL under outputDir,
// keyed by kind (html/markdown/pdf/pdf_text/media), and reports the write
// through the metadata sink. The caller resolves outputDir per kind (the
// Engine does this via config.Config.OutputDirectories()).
type ArtifactWriter interface {
	Write(
		outputDir string,
		kind metadata.ArtifactKind,
		sourceURL string,
		ext string,
		content []byte,
	) (WriteResult, failure.ClassifiedError)
}

type LocalArtifactWriter struct {
	metadataSink metadata.MetadataSink
}

func NewLocalArtifactWriter(
	metadataSink metadata.MetadataSink,
) LocalArtifactWriter {
	return LocalArtifactWriter{
		metadataSink: metadataSink,
	}
}

func (s *LocalArtifactWriter) Write(
	outputDir string,
	kind metadata.ArtifactKind,
	sourceURL string,
	ext string,
	content []byte,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(outputDir, sourceURL, ext, content)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalArtifactWriter.Write",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, sourceURL),
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	s.metadataSink.RecordArtifact(
		kind,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
			metadata.NewAttr(metadata.AttrURL, sourceURL),
			metadata.NewAttr(metadata.AttrField, writeResult.URLHash()),
			metadata.NewAttr(metadata.AttrField, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

// write hashes sourceURL with full SHA-256 hex (per the filename scheme;
// truncation was a teacher-era shortcut this package no longer needs since
// every artifact kind now has its own directory), then writes content to
// outputDir/<hash><ext>.
func write(
	outputDir string,
	sourceURL string,
	ext string,
	content []byte,
) (WriteResult, failure.ClassifiedError) {
	urlHash, err := hashutil.HashBytes([]byte(sourceURL), hashutil.HashAlgoSHA256)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
			Path:      "",
		}
	}

	if err := fileutil.EnsureDir(outputDir); err != nil {
		var fileErr *fileutil.FileError
		if errors.As(err, &fileErr) {
			cause := ErrCauseWriteFailure
			retryable := false
			if fileErr.Cause == fileutil.ErrCausePathError {
				cause = ErrCausePathError
				retryable = true
			}
			return WriteResult{}, &StorageError{
				Message:   err.Error(),
				Retryable: retryable,
				Cause:     cause,
				Path:      outputDir,
			}
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      outputDir,
		}
	}

	fullPath := filepath.Join(outputDir, urlHash+ext)

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	contentHashFull, err := hashutil.HashBytes(content, hashutil.HashAlgoSHA256)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
			Path:      fullPath,
		}
	}

	return NewWriteResult(urlHash, fullPath, contentHashFull), nil
}

// KindExtension maps an artifact kind to its on-disk extension. Media
// assets carry their own extension (inferred from content-type by the
// caller) since "media" covers video and audio alike.
func KindExtension(kind metadata.ArtifactKind) string {
	switch kind {
	case metadata.ArtifactMarkdown:
		return ".md"
	case metadata.ArtifactHTML:
		return ".html"
	case metadata.ArtifactPDF:
		return ".pdf"
	case metadata.ArtifactPDFText:
		return ".txt"
	default:
		return ""
	}
}

// OutputDirKey maps an artifact kind to the config.Config.OutputDirectories()
// key that names where it's written.
func OutputDirKey(kind metadata.ArtifactKind) string {
	switch kind {
	case metadata.ArtifactMarkdown:
		return "md"
	case metadata.ArtifactHTML:
		return "html"
	case metadata.ArtifactPDF:
		return "pdf"
	case metadata.ArtifactPDFText:
		return "pdf_text"
	case metadata.ArtifactMedia:
		return "video"
	default:
		return ""
	}
}
