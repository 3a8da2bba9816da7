package server

import "errors"

var (
	ErrPipelineRequired   = errors.New("ingestion pipeline is required")
	ErrSearcherRequired   = errors.New("searcher is required")
	ErrReporterRequired   = errors.New("status reporter is required")
	ErrImageStoreRequired = errors.New("image store is required")
)

const (
	msgNoFiles      = "No files provided"
	msgTooManyFiles = "Too many files in one upload"
	msgBadUpload    = "Could not read upload"
	msgBadRequest   = "Request body must be JSON"
	msgEmptyQuery   = "Query cannot be empty"
	msgSearchFailed = "Search failed"
	msgStatusFailed = "Could not read index status"
	msgNotFound     = "Screenshot not found"
	msgReadFailed   = "Could not read screenshot"
)
