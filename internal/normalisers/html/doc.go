// Package html extracts the visible text of HTML uploads. Scripts, styles
// and comments are dropped and block elements become paragraph breaks.
package html
