package engine

import "log"

// logger is the engine-wide logger, matching the teacher's bare-stdlib
// `log` package choice elsewhere in this codebase (see DESIGN.md).
var logger = log.Default()
