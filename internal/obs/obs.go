// Copyright 2023-2024 Oliver Eikemeier. All Rights Reserved.
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
//
// SPDX-License-Identifier: Apache-2.0

// Package obs is the library's internal logging facade. It stays out of the
// public API on purpose. SetLogger installs the slog.Logger that receives
// the debug lines; as this package is internal and no exported API of the
// module forwards to it, only code inside the module can install a logger.
package obs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger installs l as the destination for the library's internal debug
// logging. Passing nil disables logging (the default).
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Debugf emits a debug-level log line with format/args semantics, if and
// only if a logger has been installed. It never allocates or formats when
// logging is disabled.
func Debugf(format string, args ...any) {
	l := logger.Load()
	if l == nil {
		return
	}

	l.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
}
