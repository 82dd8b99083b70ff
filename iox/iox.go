// Package iox provides small I/O cleanup helpers.
package iox

import "io"

// DiscardClose closes c and drops the error. For defer sites where a
// close failure is unactionable, like HTTP response bodies:
//
//	defer iox.DiscardClose(resp.Body)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc wraps c.Close for t.Cleanup registration:
//
//	t.Cleanup(iox.CloseFunc(client))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}
