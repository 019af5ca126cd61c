// Package types defines the shared domain types for the press release
// monitor: releases, scrape jobs, and their wire representations.
package types
