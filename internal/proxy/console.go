package proxy

import "embed"

// The console is a single static page that drives /api/search from the
// browser; all state lives client-side, the gateway stays stateless.
//
//go:embed static/*
var consoleFiles embed.FS
