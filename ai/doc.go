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

// Package ai provides the text embedding capability used by casbert.
//
// Queries are encoded into vectors through the Embedder interface and ranked
// against precomputed index vectors. The model behind the Embedder must be the
// one the index was built with, so the configuration names the model
// explicitly.
//
// # Interfaces
//
//   - Embedder: Generates vector embeddings from text
//   - AIProvider: Hands out the configured Embedder and owns its lifetime
//
// # Implementation Packages
//
//   - ai/openai: langchaingo client for OpenAI-compatible embedding endpoints
//   - ai/mock: Deterministic embedder for unit tests
//
// Public constructors return interface types. Test constructors in ai/mock
// return concrete types so tests can inject behavior and count calls.
//
// # Caching
//
// Interactive search repeats the same query text often. NewCachedEmbedder
// wraps any Embedder in a bounded LRU keyed by a blake2b digest of the text.
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "sodium channel conductance")
package ai
