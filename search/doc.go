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

// Package search resolves ranked index matches into presentation records.
//
// A Searcher ranks one entity type with its embedding index and then runs the
// join plan of that type over the snapshot: the owning component and model,
// the unit text, rendered maths, simulation plots, images and similar models.
// Joins that find nothing degrade to empty values instead of failing the
// record, and index ids without a record are skipped.
//
// Every typed search also returns a facet map keyed by ontology class id
// that lists the co-occurring classes and the result ids citing the class.
package search
