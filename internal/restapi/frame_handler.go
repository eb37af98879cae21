package restapi

import (
	"bytes"
	"net/http"
	"strconv"

	"departureboard.app/internal/logging"
)

// FrameSequenceHeader carries the commit count of the served frame so clients
// can skip unchanged frames.
const FrameSequenceHeader = "X-Frame-Sequence"

// frameHandler serves the last committed frame as a PNG.
func (api *RestAPI) frameHandler(w http.ResponseWriter, r *http.Request) {
	if api.Surface == nil {
		api.sendNotFound(w, r)
		return
	}

	// Read before encoding so the sequence never runs ahead of the image.
	sequence := api.Surface.Commits()
	var buf bytes.Buffer
	if err := api.Surface.WritePNG(&buf); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set(FrameSequenceHeader, strconv.FormatUint(sequence, 10))
	if _, err := buf.WriteTo(w); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to write frame", err)
	}
}
