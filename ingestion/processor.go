// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/glimpse/ai"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
)

// process runs one file through validate, persist, describe and record.
// The analyzer is called without any store lock held; only the identifier
// lock is held, which blocks nothing but uploads of the same identifier.
func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, f File) core.Outcome {
	out := core.Outcome{Filename: f.Filename}

	if err := core.ValidateUpload(f.Filename, f.ContentType, int64(len(f.Data)), p.maxFileSize); err != nil {
		logger.Info("rejected file", "filename", f.Filename, "err", err)
		return failed(out, p.validationMessage(err), false)
	}

	id, err := core.IdentifierFor(f.Filename)
	if err != nil {
		logger.Info("rejected file", "filename", f.Filename, "err", err)
		return failed(out, msgInvalidFilename, false)
	}
	out.Identifier = id
	logger = logger.With("identifier", id)

	// Held from the duplicate check through the record write so the stored
	// bytes and the record always come from the same upload.
	unlock := p.locks.lock(id)
	defer unlock()

	digest := core.DigestContent(f.Data)
	existing, err := p.descriptions.Get(ctx, id)
	switch {
	case err == nil && existing.Searchable() && existing.Digest == digest:
		logger.Debug("identical content already indexed")
		out.Status = core.OutcomeSkipped
		out.Message = msgAlreadyIndexed
		return out
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		logger.Warn("could not read existing record", "err", err)
	}

	mimeType := mimeTypeOf(f)
	location, err := p.images.Put(ctx, id, f.Data, mimeType)
	if err != nil {
		logger.Error("failed to store image", "err", err)
		return failed(out, msgSaveImageFailed, false)
	}

	desc, descErr := p.analyzer.Describe(ctx, f.Data, mimeType)
	if descErr != nil {
		logger.Warn("analysis failed", "transient", ai.IsTransient(descErr), "err", descErr)
	}

	now := p.now().UTC()
	model := p.analyzer.Model()
	err = p.descriptions.Update(ctx, id, func(current *core.Record) (*core.Record, error) {
		rec := &core.Record{
			Identifier: id,
			SourcePath: location,
			Digest:     digest,
			Model:      model,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if descErr != nil {
			rec.Status = core.RecordStatusFailed
			rec.Message = descErr.Error()
			rec.Retryable = ai.IsTransient(descErr)
			return rec, nil
		}
		rec.Status = core.RecordStatusIndexed
		rec.VisualSummary = desc.VisualSummary
		rec.TextContent = desc.TextContent
		// Same bytes indexed concurrently: keep the first analysis time.
		if current.Searchable() && current.Digest == digest && !current.CreatedAt.IsZero() {
			rec.CreatedAt = current.CreatedAt
		}
		return rec, nil
	})
	if err != nil {
		logger.Error("failed to save description", "err", err)
		return failed(out, msgSaveFailed, false)
	}

	if descErr != nil {
		if ai.IsTransient(descErr) {
			return failed(out, fmt.Sprintf("%s: %s", msgProcessFailed, msgRetryable), true)
		}
		return failed(out, msgProcessFailed, false)
	}

	logger.Debug("indexed image", "text_len", len(desc.TextContent))
	out.Status = core.OutcomeSuccess
	out.Message = msgProcessed
	return out
}

func (p *Pipeline) validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidFileType):
		return msgInvalidFileType
	case errors.Is(err, core.ErrFileTooLarge):
		return p.tooLargeMessage()
	case errors.Is(err, core.ErrEmptyFile):
		return msgEmptyFile
	default:
		return err.Error()
	}
}

func (p *Pipeline) tooLargeMessage() string {
	if p.maxFileSize >= 1<<20 {
		return fmt.Sprintf("%s (max %d MB)", msgTooLarge, p.maxFileSize>>20)
	}
	return fmt.Sprintf("%s (max %d bytes)", msgTooLarge, p.maxFileSize)
}

// mimeTypeOf prefers an explicit image content type and falls back to the
// type implied by the extension.
func mimeTypeOf(f File) string {
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	return core.MimeTypeFor(f.Filename)
}

func failed(out core.Outcome, message string, retryable bool) core.Outcome {
	out.Status = core.OutcomeError
	out.Message = message
	out.Retryable = retryable
	return out
}
