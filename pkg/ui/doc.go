// Package ui holds the terminal output of vkbackup: colored messages, the
// upload progress line and desktop notifications. The full-screen view lives
// in the tui subpackage.
package ui
