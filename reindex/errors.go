package reindex

import "errors"

var (
	// ErrDescriptionStoreRequired is returned when a description store is not provided.
	ErrDescriptionStoreRequired = errors.New("description store required")

	// ErrImageStoreRequired is returned when an image store is not provided.
	ErrImageStoreRequired = errors.New("image store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
