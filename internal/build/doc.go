// Package build runs the site build.
//
// A build has two stages executed in order. The articles stage renders every
// source in the articles directory and collects one record per page; the
// index stage renders the listing page over those records. Both templates are
// loaded before either stage runs, so a missing template never leaves a
// partially written site. All execution paths (CLI build, watch mode, tests)
// route through Pipeline.Run.
package build
