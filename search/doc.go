// Copyright 2025 Soukdata
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


// Package search answers natural-language queries over the canonical catalog.
//
// The Engine type implements a staged pipeline:
//   - Encode the query text into a vector
//   - Retrieve an over-fetched candidate set from the vector index
//   - Hydrate candidates from the product repository
//   - Apply category and price filters, then truncate to the requested size
//
// Every stage can be observed through the Monitor interface, which defaults
// to a no-op implementation.
package search
