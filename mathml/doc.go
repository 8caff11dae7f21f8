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

// Package mathml renders model math for presentation.
//
// Full MathML transcoding (content to presentation markup, presentation markup
// to LaTeX) is an external capability modeled by the Transcoder interface.
// The package itself owns the small amount of notation logic casbert needs on
// its own: rendering compound variable names such as "i_Na_ss" as nested
// subscripts, the inverse parsing used to recover name components, and the
// Greek letter tables both directions rely on.
//
// Greek substitution is lossy. Component names spelled "lamda" in source models
// become \lambda in LaTeX and parse back as "lambda".
package mathml
