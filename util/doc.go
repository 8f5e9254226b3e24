// Package util holds the small generic helpers apikit packages share.
package util
