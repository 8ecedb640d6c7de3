//go:build !unix

package repositories

import "os"

// Without flock only the in-process mutex serializes increments.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
