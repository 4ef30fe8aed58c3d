// Copyright 2020 Ahmad Sameh(asmsh)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package promise

import "github.com/asmsh/contprom/internal/box"

// BadCastError reports that a typed continuation's declared input type
// didn't match a promise's stored payload type exactly (§7 "Bad cast").
// Resolved-path mismatches surface as a rejection wrapping this error;
// rejected-path mismatches are pass-through and never produce one.
type BadCastError = box.BadCastError
