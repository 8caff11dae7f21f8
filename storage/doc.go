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

// Package storage provides the read-only data model searches run against and
// the persistence abstraction it is loaded from.
//
// # Snapshot
//
// A Snapshot bundles the eight relational collections (variables, components,
// Cellml models, simulation experiments, workspaces, images, units and math
// fragments), one embedding index per searchable entity type and the cluster
// table. It is constructed once and passed explicitly to every search.
//
// # Repositories
//
// CatalogRepository decouples the persistent format from the search code.
// The badger sub-package implements it on BadgerDB:
//
//	repo, err := badger.NewRepository("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	snap, err := repo.LoadSnapshot(ctx)
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//
// # Serialization
//
// Records are encoded with mus-go. Each record type has a Serializer (for
// example VariableMUS) used through Marshal and Unmarshal.
package storage
