// Command guestctl is the organizer-side companion of the check-in API: it
// manages keys, computes attendee digests and produces the signatures the
// API verifies.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
