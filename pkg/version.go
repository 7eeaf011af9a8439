package moodtrend

// Version is the moodtrend release, reported by `moodtrend version` and the MCP server.
var Version = "0.1.0"
