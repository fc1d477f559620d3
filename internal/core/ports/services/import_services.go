package services

import (
	"context"
	"io"

	"github.com/gncbooks/gncledger/internal/dto"
)

// ImportSvcFacade runs the import pipeline: decompress, parse, post-pass,
// bulk commit. The whole import is one synchronous call; callers run it off
// any interactive thread and may only cancel by abandoning it — there is no
// mid-document checkpoint, so a cancelled import is discarded and retried
// from the start.
type ImportSvcFacade interface {
	// ImportBook reads one GnuCash XML document (plain or gzip) and
	// commits it. On success it returns the book identifier and entity
	// counts.
	ImportBook(ctx context.Context, r io.Reader, sourceName string) (*dto.ImportSummary, error)
}
