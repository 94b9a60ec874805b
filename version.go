package tl

// Version is the interpreter version reported by the CLI.
const Version = "0.2.0"

// BuildDate is stamped by the build (-ldflags "-X ...BuildDate=...").
var BuildDate = "unknown"
