// Package devserver implements the local preview server: a recursive file
// watcher feeding a single debounce goroutine that rebuilds the site, a
// reload flag polled by the browser, and an HTTP handler serving the
// destination tree with a polling script injected into HTML pages.
//
// The watcher only sends events; all loop state is owned by Loop.Run. The
// reload flag is the only state shared with HTTP handlers.
package devserver
