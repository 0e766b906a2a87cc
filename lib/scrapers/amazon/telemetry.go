package amazon

import (
	"shelfwatch/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/amazon")

// SetRestyInstrumentOutput dumps a request/response transcript for every
// page fetch to out. Transcripts are only written while debug logging is
// enabled.
func (c *Client) SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, out)
}
