package utils

import "io"

// maxDrain bounds how much of an unread body is discarded before closing.
const maxDrain = 64 << 10

// DrainClose discards what is left of an HTTP response body (up to 64KiB)
// and closes it, so the transport can reuse the connection.
func DrainClose(body io.ReadCloser) {
	_, _ = io.CopyN(io.Discard, body, maxDrain)
	_ = body.Close()
}
