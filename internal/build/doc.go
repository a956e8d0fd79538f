// Package build is the site build pipeline. Every entry point (build, build
// --watch, serve) runs the same Builder: scan, parse posts and pages, copy
// static files, then render everything through layouts into the destination.
//
// A build is fail-fast. The first error aborts it and partially written
// output is left in place.
package build
