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

package core

import "errors"

var (
	// ErrConfiguration is the root of every malformed-request failure.
	// It is surfaced to the caller and fails the call.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnknownVariant indicates an index variant that is not loaded.
	ErrUnknownVariant = errors.New("unknown index variant")

	// ErrUnknownEntityType indicates an entity type without an index.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrInvalidTopK indicates a negative result cap.
	ErrInvalidTopK = errors.New("top must not be negative")

	// ErrInvalidMinSimilarity indicates a threshold outside the cosine range.
	ErrInvalidMinSimilarity = errors.New("minimum similarity must be within [-1, 1]")

	// ErrEmptyQuery indicates blank query text.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrNotFound indicates a referenced id has no record.
	// Resolvers substitute a default value instead of returning it.
	ErrNotFound = errors.New("record not found")

	// ErrStaleReference indicates the index returned an id that has no record.
	ErrStaleReference = errors.New("stale index reference")
)
