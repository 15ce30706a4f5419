// Package filesystem lists and watches local directories.
package filesystem
